// Package telegram is the bot front end: students send a problem as a plain
// message and get both providers' answers back, or reply to an answer for a
// follow-up explanation from one provider.
package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"solver-relay/internal/solver"
)

const (
	ModelClaude = "claude"
	ModelGPT4   = "gpt4"
	ModelBoth   = "both"
)

var knownDomains = map[string]bool{
	"math": true, "science": true, "law": true, "business": true,
}

// Solver is the orchestration surface the router needs.
type Solver interface {
	Solve(ctx context.Context, domain, question string) (solver.SolveResult, error)
	Chat(ctx context.Context, selector, message, chatContext, domain string) (string, error)
}

type Router struct {
	Bot      *tgbotapi.BotAPI
	Solver   Solver
	Settings *Manager
	Log      *slog.Logger
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(upd)
		return
	}
	text := strings.TrimSpace(upd.Message.Text)
	if text == "" {
		return
	}

	// a reply to one of the bot's answers is a follow-up question carrying
	// that answer as context
	if prior := repliedBotText(upd, r.Bot.Self.ID); prior != "" {
		r.handleFollowUp(cid, text, prior)
		return
	}
	r.handleProblem(cid, text)
}

func (r *Router) handleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start":
		r.send(cid, "Send me a problem and I'll ask Claude and GPT-4 side by side.\n"+
			"Commands: /domain <math|science|law|business>, /model <claude|gpt4|both>, /health")
	case "health":
		r.send(cid, "OK")
	case "domain":
		arg := strings.ToLower(strings.TrimSpace(upd.Message.CommandArguments()))
		if arg == "" {
			r.send(cid, "Current domain: "+r.Settings.Get(cid).Domain+
				"\nUsage: /domain math | science | law | business")
			return
		}
		if !knownDomains[arg] {
			r.send(cid, "Unknown domain. Available: math | science | law | business")
			return
		}
		s := r.Settings.Get(cid)
		s.Domain = arg
		r.Settings.Set(cid, s)
		r.send(cid, "Domain set to: "+arg)
	case "model":
		arg := strings.ToLower(strings.TrimSpace(upd.Message.CommandArguments()))
		if arg == "" {
			r.send(cid, "Current model: "+r.Settings.Get(cid).Model+
				"\nUsage: /model claude | gpt4 | both")
			return
		}
		switch arg {
		case ModelClaude, ModelGPT4, ModelBoth:
			s := r.Settings.Get(cid)
			s.Model = arg
			r.Settings.Set(cid, s)
			r.send(cid, "Model set to: "+arg)
		default:
			r.send(cid, "Unknown model. Available: claude | gpt4 | both")
		}
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) handleProblem(cid int64, question string) {
	s := r.Settings.Get(cid)
	res, err := r.Solver.Solve(context.Background(), s.Domain, question)
	if err != nil {
		r.Log.Error("solve failed", "chat_id", cid, "err", err)
		r.send(cid, "I couldn't process that. Try /start for usage.")
		return
	}
	r.sendHTML(cid, FormatSolveReply(res, s.Model))
}

func (r *Router) handleFollowUp(cid int64, message, priorAnswer string) {
	s := r.Settings.Get(cid)
	model := s.Model
	if model == ModelBoth {
		// follow-ups need a single provider; claude is the default
		model = ModelClaude
	}
	out, err := r.Solver.Chat(context.Background(), model, message, priorAnswer, s.Domain)
	if err != nil {
		r.Log.Error("chat failed", "chat_id", cid, "err", err)
		r.send(cid, "I couldn't process that follow-up.")
		return
	}
	r.sendHTML(cid, ToTelegramHTML(out))
}

// FormatSolveReply renders a solve result for Telegram, one section per
// requested provider.
func FormatSolveReply(res solver.SolveResult, model string) string {
	var b strings.Builder
	if model == ModelClaude || model == ModelBoth {
		b.WriteString("<b>Claude</b>\n")
		b.WriteString(ToTelegramHTML(res.Claude.Render()))
	}
	if model == ModelGPT4 || model == ModelBoth {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("<b>GPT-4</b>\n")
		b.WriteString(ToTelegramHTML(res.GPT4.Render()))
	}
	return b.String()
}

// ToTelegramHTML converts pipeline output to the HTML subset Telegram
// accepts: real newlines instead of <br> tags.
func ToTelegramHTML(s string) string {
	return strings.ReplaceAll(s, "<br>", "\n")
}

func repliedBotText(upd tgbotapi.Update, botID int64) string {
	re := upd.Message.ReplyToMessage
	if re == nil || re.From == nil || re.From.ID != botID {
		return ""
	}
	return strings.TrimSpace(re.Text)
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Error("telegram send failed", "chat_id", chatID, "err", err)
	}
}

func (r *Router) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Error("telegram send failed", "chat_id", chatID, "err", err)
	}
}
