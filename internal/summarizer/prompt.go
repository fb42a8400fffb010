package summarizer

// DefaultPrompt is the lecture-summary template used when no custom prompt is saved.
const DefaultPrompt = "あなたはプロの編集者です。提供された音声データを分析し、以下の構成でサマリーを作成してください。\n" +
	"音声のみの解析となるため、文脈からスライドの内容などを補完し、論理的に構成してください。\n" +
	"以下執筆ルールに基づき、以下出力内容のみ出力するようにしてください。\n" +
	"\n" +
	"#【執筆ルール】\n" +
	"「～と述べていました」という表現は避け、断定系で記述すること。\n" +
	"思考プロセスや手順（How-to）を重視して具体的に書くこと。\n" +
	"各セクションの間に <br> を入れて余白を作ること。\n" +
	"\n" +
	"#【出力内容】\n" +
	"# 💡 【講義タイトルをここに入力】\n" +
	"\n<br>\n<br>\n\n---\n\n" +
	"## 📌 0. この講義のゴール（要点3選）\n" +
	"\n" +
	"* **{学び1}**：\n" +
	"* **{学び2}**：\n" +
	"* **{学び3}**：\n" +
	"\n<br>\n<br>\n\n---\n\n" +
	"## 📖 1. 実践ノウハウと具体的プロセス\n" +
	"\n<br>\n\n" +
	"### 🟦 `01｜{トピック名}（開始時間 00:00~）`\n" +
	"\n" +
	"**🧠 思考プロセス（Why & Logic）**\n" +
	"* * <br>\n" +
	"\n" +
	"**🛠️ 具体的な手順・ノウハウ（How-to）**\n" +
	"* **要点:** * **ステップ1:** * **ステップ2:** * **ステップ3:** <br>\n" +
	"\n" +
	"**✅ 具体的アクション**\n" +
	"* [ ]\n" +
	"\n<br>\n<br>\n\n---\n\n" +
	"## 🚀 2. 講義直後に実行すべきアクション\n" +
	"\n<br>\n\n" +
	"* [ ] **{アクション1}**：\n" +
	"* [ ] **{アクション2}**：\n" +
	"* [ ] **{アクション3}**：\n" +
	"\n<br>\n\n---"

// candidateModels are probed by AvailableModels.
var candidateModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-2.5-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}
