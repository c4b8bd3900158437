package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// --- Constants ---

const (
	discordGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"
	discordAPIBase    = "https://discord.com/api/v10"

	// Gateway opcodes.
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11

	// Gateway intents.
	intentGuildMessages  = 1 << 9
	intentDirectMessages = 1 << 12
	intentMessageContent = 1 << 15
)

// --- Gateway Types ---

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int            `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string            `json:"token"`
	Intents    int               `json:"intents"`
	Properties map[string]string `json:"properties"`
}

type resumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
}

type readyData struct {
	SessionID string      `json:"session_id"`
	User      discordUser `json:"user"`
}

// --- API Types ---

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

type discordMessage struct {
	ID        string      `json:"id"`
	ChannelID string      `json:"channel_id"`
	Author    discordUser `json:"author"`
	Content   string      `json:"content"`
}

// --- Task Bot ---

// TaskBot manages the Discord Gateway connection and the task-summary
// commands. Message handlers run synchronously on the gateway read loop:
// one command completes (fetch, render, send) before the next event is
// processed, and the only shared state across invocations is the read-only
// IdentityMap.
type TaskBot struct {
	cfg    *Config
	source taskSource
	ids    *IdentityMap

	botUserID string
	sessionID string
	seq       int
	seqMu     sync.Mutex
	writeMu   sync.Mutex // serializes gateway writes (event loop vs heartbeat)

	apiBase string
	client  *http.Client
	stopCh  chan struct{}
	now     func() time.Time
}

func newTaskBot(cfg *Config, source taskSource, ids *IdentityMap) *TaskBot {
	return &TaskBot{
		cfg:     cfg,
		source:  source,
		ids:     ids,
		apiBase: discordAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
}

// Run connects to the Discord Gateway and processes events. Blocks until
// stopped, reconnecting after transient gateway failures.
func (b *TaskBot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stopCh:
			return
		default:
		}

		if err := b.connectAndRun(ctx); err != nil {
			logError("discord gateway error", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-b.stopCh:
			return
		case <-time.After(5 * time.Second):
			logInfo("discord reconnecting...")
		}
	}
}

// Stop signals the bot to disconnect.
func (b *TaskBot) Stop() {
	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
	}
}

func (b *TaskBot) connectAndRun(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, discordGatewayURL, nil)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Read Hello (op 10).
	var hello gatewayPayload
	if err := b.readJSON(conn, &hello); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected op 10, got %d", hello.Op)
	}

	var hd helloData
	json.Unmarshal(hello.D, &hd)

	// Start heartbeat.
	hbCtx, hbCancel := context.WithCancel(ctx)
	defer hbCancel()
	go b.heartbeatLoop(hbCtx, conn, time.Duration(hd.HeartbeatInterval)*time.Millisecond)

	// Identify or Resume.
	if b.sessionID != "" {
		b.seqMu.Lock()
		seq := b.seq
		b.seqMu.Unlock()
		err = b.sendResume(conn, seq)
	} else {
		err = b.sendIdentify(conn)
	}
	if err != nil {
		return err
	}

	// Event loop.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.stopCh:
			return nil
		default:
		}

		var payload gatewayPayload
		if err := b.readJSON(conn, &payload); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if payload.S != nil {
			b.seqMu.Lock()
			b.seq = *payload.S
			b.seqMu.Unlock()
		}

		switch payload.Op {
		case opDispatch:
			b.handleEvent(payload)
		case opHeartbeat:
			b.sendHeartbeat(conn)
		case opReconnect:
			logInfo("discord gateway reconnect requested")
			return nil
		case opInvalidSession:
			logWarn("discord invalid session")
			b.sessionID = ""
			return nil
		case opHeartbeatAck:
			// OK
		}
	}
}

func (b *TaskBot) readJSON(conn *websocket.Conn, v any) error {
	conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	return conn.ReadJSON(v)
}

func (b *TaskBot) writeJSON(conn *websocket.Conn, v any) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

func (b *TaskBot) sendIdentify(conn *websocket.Conn) error {
	id := identifyData{
		Token:   b.cfg.BotToken,
		Intents: intentGuildMessages | intentDirectMessages | intentMessageContent,
		Properties: map[string]string{
			"os": "linux", "browser": "taskherald", "device": "taskherald",
		},
	}
	d, _ := json.Marshal(id)
	return b.writeJSON(conn, gatewayPayload{Op: opIdentify, D: d})
}

func (b *TaskBot) sendResume(conn *websocket.Conn, seq int) error {
	r := resumeData{Token: b.cfg.BotToken, SessionID: b.sessionID, Seq: seq}
	d, _ := json.Marshal(r)
	return b.writeJSON(conn, gatewayPayload{Op: opResume, D: d})
}

func (b *TaskBot) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.sendHeartbeat(conn); err != nil {
				return
			}
		}
	}
}

func (b *TaskBot) sendHeartbeat(conn *websocket.Conn) error {
	b.seqMu.Lock()
	seq := b.seq
	b.seqMu.Unlock()
	d, _ := json.Marshal(seq)
	return b.writeJSON(conn, gatewayPayload{Op: opHeartbeat, D: d})
}

// --- Event Handling ---

func (b *TaskBot) handleEvent(payload gatewayPayload) {
	switch payload.T {
	case "READY":
		var ready readyData
		if json.Unmarshal(payload.D, &ready) == nil {
			b.botUserID = ready.User.ID
			b.sessionID = ready.SessionID
			logInfo("discord bot connected",
				"user", ready.User.Username, "id", ready.User.ID,
				"registered", b.ids.Size())
		}
	case "MESSAGE_CREATE":
		var msg discordMessage
		if json.Unmarshal(payload.D, &msg) == nil {
			b.handleMessage(msg)
		}
	}
}

func (b *TaskBot) handleMessage(msg discordMessage) {
	// Ignore bots, including ourselves.
	if msg.Author.Bot || msg.Author.ID == b.botUserID {
		return
	}

	text := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(text, "!") {
		return
	}
	b.handleCommand(msg, text[1:])
}

// --- Commands ---

// Fixed phrases that query the sender's own tasks.
var selfCommands = map[string]bool{
	"me":      true,
	"tasks":   true,
	"mytasks": true,
}

func (b *TaskBot) handleCommand(msg discordMessage, cmdText string) {
	fields := strings.Fields(cmdText)
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])

	switch {
	case selfCommands[command]:
		b.cmdSelfTasks(msg)
	case command == "helpme" || command == "help":
		b.cmdHelp(msg)
	default:
		// Any other !<word> is a person-name query.
		b.cmdNameTasks(msg, fields[0])
	}
}

func (b *TaskBot) cmdSelfTasks(msg discordMessage) {
	name := b.ids.DisplayName(msg.Author.ID)
	if name == "" {
		b.sendMessage(msg.ChannelID, "❌ You're not registered in the system. Contact an admin to add your Discord ID.")
		return
	}
	b.respondWithDigest(msg.ChannelID, name, "<@"+msg.Author.ID+">")
}

func (b *TaskBot) cmdNameTasks(msg discordMessage, word string) {
	person := titleCaseWords(strings.ReplaceAll(word, "_", " "))
	if person == "" {
		return
	}
	label := person
	if id := b.ids.MentionID(person); id != "" {
		label = "<@" + id + ">"
	}
	b.respondWithDigest(msg.ChannelID, person, label)
}

// respondWithDigest runs one query-and-respond sequence to completion:
// typing indicator, fetch, render, chunked send.
func (b *TaskBot) respondWithDigest(channelID, person, label string) {
	b.sendTyping(channelID)

	ctx := withTraceID(context.Background(), newTraceID("discord"))
	logInfoCtx(ctx, "digest requested", "person", person, "channel", channelID)

	digest := getUserTasks(ctx, b.source, person, dateOnly(b.now()))
	summary := formatTaskSummary(label, digest)
	for _, chunk := range chunkMessage(summary, maxMessageLen) {
		b.sendMessage(channelID, chunk)
	}
}

func (b *TaskBot) cmdHelp(msg discordMessage) {
	help := strings.Join([]string{
		"📋 **Task Bot Commands**",
		"",
		"**Personal Task Summary:**",
		"• `!me` - Show your personal tasks (overdue, tomorrow, this week)",
		"• `!tasks` / `!mytasks` - Same as `!me`",
		"• `!<name>` - Show that person's tasks, e.g. `!kyle`",
		"• `!helpme` - Show this help message",
		"",
		"**Note:** You must be registered in the system to use `!me`.",
	}, "\n")
	b.sendMessage(msg.ChannelID, help)
}

// --- REST API Helpers ---

func (b *TaskBot) sendMessage(channelID, content string) {
	if r := []rune(content); len(r) > maxMessageLen {
		content = string(r[:maxMessageLen-3]) + "..."
	}
	b.discordPost(fmt.Sprintf("/channels/%s/messages", channelID), map[string]string{"content": content})
}

func (b *TaskBot) sendTyping(channelID string) {
	b.discordPost(fmt.Sprintf("/channels/%s/typing", channelID), nil)
}

func (b *TaskBot) discordPost(path string, payload any) {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest("POST", b.apiBase+path, body)
	if err != nil {
		logError("discord api request error", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+b.cfg.BotToken)
	resp, err := b.client.Do(req)
	if err != nil {
		logError("discord api send failed", "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logWarn("discord api error", "status", resp.StatusCode, "body", string(data))
	}
}
