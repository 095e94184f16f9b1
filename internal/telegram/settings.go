package telegram

import "sync"

// Settings are the per-chat preferences: which subject to frame prompts
// with and which provider(s) to show.
type Settings struct {
	Domain string
	Model  string // "claude", "gpt4" or "both"
}

// Manager keeps per-chat settings; chats without an entry get the default.
type Manager struct {
	def Settings
	m   sync.Map // chatID -> Settings
}

func NewManager(def Settings) *Manager {
	return &Manager{def: def}
}

func (m *Manager) Get(chatID int64) Settings {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Settings)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, s Settings) {
	m.m.Store(chatID, s)
}
