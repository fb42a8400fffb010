package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	keyCustomPrompt  = "custom_prompt"
	keyDebugMode     = "debug_mode"
	keyGeminiAPIKey  = "gemini_api_key"
	keyWhisperAPIKey = "whisper_api_key"
)

// Settings mirrors the dashboard settings panel.
type Settings struct {
	CustomPrompt  string `json:"customPrompt"`
	DebugMode     bool   `json:"debugMode"`
	GeminiAPIKey  string `json:"geminiApiKey"`
	WhisperAPIKey string `json:"whisperApiKey"`
}

// SettingsUpdate changes only the non-nil fields.
type SettingsUpdate struct {
	CustomPrompt  *string `json:"customPrompt"`
	DebugMode     *bool   `json:"debugMode"`
	GeminiAPIKey  *string `json:"geminiApiKey"`
	WhisperAPIKey *string `json:"whisperApiKey"`
}

// Settings returns the stored settings. An unset prompt reads as the default.
func (s *Store) Settings(ctx context.Context) (Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	out := Settings{CustomPrompt: s.defaultPrompt}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case keyCustomPrompt:
			out.CustomPrompt = value
		case keyDebugMode:
			out.DebugMode, _ = strconv.ParseBool(value)
		case keyGeminiAPIKey:
			out.GeminiAPIKey = value
		case keyWhisperAPIKey:
			out.WhisperAPIKey = value
		}
	}
	return out, rows.Err()
}

func (s *Store) UpdateSettings(ctx context.Context, u SettingsUpdate) (Settings, error) {
	values := map[string]string{}
	if u.CustomPrompt != nil {
		values[keyCustomPrompt] = *u.CustomPrompt
	}
	if u.DebugMode != nil {
		values[keyDebugMode] = strconv.FormatBool(*u.DebugMode)
	}
	if u.GeminiAPIKey != nil {
		values[keyGeminiAPIKey] = *u.GeminiAPIKey
	}
	if u.WhisperAPIKey != nil {
		values[keyWhisperAPIKey] = *u.WhisperAPIKey
	}

	if err := s.setValues(ctx, values); err != nil {
		return Settings{}, err
	}
	return s.Settings(ctx)
}

// Prompt returns the custom prompt, or the default when none is saved.
func (s *Store) Prompt(ctx context.Context) (string, error) {
	value, err := s.value(ctx, keyCustomPrompt)
	if err != nil {
		return "", err
	}
	if value == "" {
		return s.defaultPrompt, nil
	}
	return value, nil
}

// ResetPrompt stores the default prompt as the custom prompt.
func (s *Store) ResetPrompt(ctx context.Context) (string, error) {
	if err := s.setValues(ctx, map[string]string{keyCustomPrompt: s.defaultPrompt}); err != nil {
		return "", err
	}
	return s.defaultPrompt, nil
}

func (s *Store) value(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setValues(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings(key, value) VALUES(?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
		if err != nil {
			return fmt.Errorf("write setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
