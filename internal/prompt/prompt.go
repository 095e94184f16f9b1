// Package prompt assembles provider-specific prompt material. Claude targets
// use the legacy completions turn-delimiter convention; gpt4 targets split
// the instruction into system and user roles. Pure string assembly, no I/O.
package prompt

import "fmt"

type Target string

const (
	TargetClaude Target = "claude"
	TargetGPT4   Target = "gpt4"
)

// Prompt carries material for either wire shape. Claude clients read Raw;
// gpt4 clients read System and User.
type Prompt struct {
	System string
	User   string
	Raw    string
}

const (
	humanTurn     = "\n\nHuman:"
	assistantTurn = "\n\nAssistant:"

	solveSystem = "You are a mathematical assistant. Solve problems step by step, " +
		"numbering each step, and clearly state the final answer at the end."
	chatSystem = "Provide further explanations and clarifications based on the " +
		"context and user's question."
)

// Solve builds the instruction for a one-shot problem. The wording differs
// slightly per provider; both ask for numbered steps and an explicit final
// answer so the formatter downstream has something to latch onto.
func Solve(target Target, domain, question string) Prompt {
	if target == TargetClaude {
		instruction := fmt.Sprintf(
			"Solve the following %s problem and explain the steps. "+
				"Number each step starting from 1. "+
				"Clearly state the final answer at the end: %s",
			domain, question)
		return Prompt{Raw: humanTurn + " " + instruction + assistantTurn}
	}
	return Prompt{
		System: solveSystem,
		User: fmt.Sprintf(
			"Solve the following %s problem and explain the steps. "+
				"Number each step. "+
				"Clearly state the final answer at the end: %s",
			domain, question),
	}
}

// Chat builds a follow-up exchange carrying caller-supplied context. The
// domain, when present, selects the expert framing of the system role.
func Chat(target Target, domain, context, message string) Prompt {
	if target == TargetClaude {
		return Prompt{Raw: humanTurn + " Context: " + context + "\n\nHuman: " + message + assistantTurn}
	}
	system := "You are a mathematical assistant. " + chatSystem
	if domain != "" {
		system = fmt.Sprintf("You are a %s expert. %s", domain, chatSystem)
	}
	return Prompt{
		System: system,
		User:   fmt.Sprintf("Context: %s\n\nQuestion: %s", context, message),
	}
}
