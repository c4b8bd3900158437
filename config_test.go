package main

import (
	"strings"
	"testing"
)

func TestCollectMentions(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"DISCORD_ID_KYLE=111",
		"DISCORD_ID_MARY_JANE=222",
		"DISCORD_ID_=333",      // empty name suffix
		"DISCORD_ID_GABRIEL=",  // empty value
		"DISCORD_IDX_KYLE=444", // wrong prefix
		"NOTVALID",
	}
	got := collectMentions(environ)
	want := map[string]string{"KYLE": "111", "MARY_JANE": "222"}
	if len(got) != len(want) {
		t.Fatalf("collectMentions = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("collectMentions[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestCollectMentionsValueWithEquals(t *testing.T) {
	got := collectMentions([]string{"DISCORD_ID_KYLE=111=extra"})
	if got["KYLE"] != "111=extra" {
		t.Errorf("value should split on first = only, got %q", got["KYLE"])
	}
}

func TestRequireCore(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		missing []string
	}{
		{"all present", Config{NotionAPIKey: "k", DatabaseID: "d"}, nil},
		{"no api key", Config{DatabaseID: "d"}, []string{"NOTION_API_KEY"}},
		{"no database", Config{NotionAPIKey: "k"}, []string{"DATABASE_ID"}},
		{"nothing", Config{}, []string{"NOTION_API_KEY", "DATABASE_ID"}},
	}
	for _, c := range cases {
		err := c.cfg.requireCore()
		if len(c.missing) == 0 {
			if err != nil {
				t.Errorf("%s: requireCore = %v, want nil", c.name, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%s: requireCore = nil, want error", c.name)
			continue
		}
		for _, key := range c.missing {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("%s: error %v should name %s", c.name, err, key)
			}
		}
	}
}

func TestRequireRemind(t *testing.T) {
	cfg := Config{NotionAPIKey: "k", DatabaseID: "d"}
	err := cfg.requireRemind()
	if err == nil || !strings.Contains(err.Error(), "DISCORD_WEBHOOK_URL") {
		t.Errorf("requireRemind without webhook = %v, want DISCORD_WEBHOOK_URL error", err)
	}

	cfg.WebhookURL = "https://discord.com/api/webhooks/1/x"
	if err := cfg.requireRemind(); err != nil {
		t.Errorf("requireRemind with webhook = %v, want nil", err)
	}
}

func TestRequireBot(t *testing.T) {
	cfg := Config{NotionAPIKey: "k", DatabaseID: "d"}
	err := cfg.requireBot()
	if err == nil || !strings.Contains(err.Error(), "DISCORD_BOT_TOKEN") {
		t.Errorf("requireBot without token = %v, want DISCORD_BOT_TOKEN error", err)
	}

	cfg.BotToken = "token"
	if err := cfg.requireBot(); err != nil {
		t.Errorf("requireBot with token = %v, want nil", err)
	}
}

func TestRequireBotDoesNotNeedWebhook(t *testing.T) {
	cfg := Config{NotionAPIKey: "k", DatabaseID: "d", BotToken: "token"}
	if err := cfg.requireBot(); err != nil {
		t.Errorf("requireBot should not need the webhook URL: %v", err)
	}
}

func TestLoggingDefaults(t *testing.T) {
	var lc LoggingConfig
	if got := lc.levelOrDefault(); got != "info" {
		t.Errorf("levelOrDefault = %q, want info", got)
	}
	if got := lc.formatOrDefault(); got != "text" {
		t.Errorf("formatOrDefault = %q, want text", got)
	}

	lc = LoggingConfig{Level: "debug", Format: "json"}
	if got := lc.levelOrDefault(); got != "debug" {
		t.Errorf("levelOrDefault = %q, want debug", got)
	}
	if got := lc.formatOrDefault(); got != "json" {
		t.Errorf("formatOrDefault = %q, want json", got)
	}
}
