// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logsink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatBot posts one JSON payload per event to an incoming webhook URL.
// No chat SDK is wired into this platform; a plain HTTP POST is the
// entire contract most chat services expose for this.
type ChatBot struct {
	webhook string
	client  *http.Client
}

// NewChatBot targets webhook with a bounded-timeout client.
func NewChatBot(webhook string) *ChatBot {
	return &ChatBot{webhook: webhook, client: &http.Client{Timeout: 5 * time.Second}}
}

type chatBotPayload struct {
	Text string `json:"text"`
}

func (c *ChatBot) Emit(e Event) error {
	body, err := json.Marshal(chatBotPayload{
		Text: fmt.Sprintf("[%s] %s: %v (status=%s)", e.Level, e.SourceName, e.Msg, e.Status),
	})
	if err != nil {
		return fmt.Errorf("logsink: could not encode chat payload: %w", err)
	}

	resp, err := c.client.Post(c.webhook, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("logsink: could not post to chat webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("logsink: chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}
