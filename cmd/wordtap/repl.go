package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/wordtap/pkg/wordtap"
	"github.com/cognicore/wordtap/pkg/wordtap/internalerr"
	"github.com/cognicore/wordtap/pkg/wordtap/signals"
	"github.com/cognicore/wordtap/pkg/wordtap/store"
)

const helpText = `Commands:
  open <text>               study the given text
  load <file>               study the contents of a file (HTML is stripped)
  show                      list tokens with status and phrase markers
  tap <index>...            toggle tokens in the selection
  clear                     clear the selection
  signals                   analyze the selection (with dictionary lookup)
  save <status> [meaning]   save the selection as a phrase
  word <word> <status> [meaning]
                            save a single word
  family <word>             list saved words sharing a stem
  translate [text]          translate the text or the selection
  suggest                   saved phrases similar to the selection
  stats                     learning statistics
  quit                      exit
Statuses: not_learned (n), learning (l), learned (d)`

type repl struct {
	engine  *wordtap.Engine
	session *wordtap.Session
	out     io.Writer
}

func newREPL(engine *wordtap.Engine, out io.Writer) *repl {
	return &repl{engine: engine, out: out}
}

// resume reopens the active text from a previous run, if any.
func (r *repl) resume(ctx context.Context) {
	s, err := r.engine.ResumeText(ctx)
	if err != nil {
		if !errors.Is(err, internalerr.ErrNotFound) {
			fmt.Fprintln(r.out, "Error:", err)
		}
		return
	}
	r.session = s
	fmt.Fprintf(r.out, "Resumed text %s (%d tokens)\n", s.Text().ID, len(s.Tokens()))
}

func (r *repl) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "open":
		return r.open(ctx, rest)
	case "load":
		data, err := os.ReadFile(rest)
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}
		return r.open(ctx, string(data))
	case "word":
		return r.saveWord(ctx, rest)
	case "family":
		return r.family(ctx, rest)
	case "stats":
		return r.stats(ctx)
	case "translate":
		if rest != "" {
			return r.translate(ctx, rest)
		}
	}

	if r.session == nil {
		return fmt.Errorf("no text open; use 'open <text>' first")
	}
	switch cmd {
	case "show":
		return r.show(ctx)
	case "tap":
		return r.tap(ctx, strings.Fields(rest))
	case "clear":
		r.session.ClearSelection()
		return nil
	case "signals":
		return r.signals(ctx)
	case "save":
		return r.savePhrase(ctx, rest)
	case "translate":
		sel := r.session.SelectedTokens()
		if len(sel) == 0 {
			return fmt.Errorf("nothing selected")
		}
		return r.translate(ctx, strings.Join(sel, " "))
	case "suggest":
		return r.suggest(ctx)
	}
	return fmt.Errorf("unknown command %q (try 'help')", cmd)
}

func (r *repl) open(ctx context.Context, text string) error {
	s, err := r.engine.OpenText(ctx, text)
	if err != nil {
		return err
	}
	r.session = s
	fmt.Fprintf(r.out, "Opened text %s (%d tokens)\n", s.Text().ID, len(s.Tokens()))
	return r.show(ctx)
}

func (r *repl) show(ctx context.Context) error {
	statuses, err := r.session.WordStatuses(ctx)
	if err != nil {
		return err
	}
	contexts := r.session.Contexts()
	selected := make(map[int]bool)
	for _, idx := range r.session.Selection() {
		selected[idx] = true
	}

	for i, tok := range r.session.Tokens() {
		var marks []string
		if selected[i] {
			marks = append(marks, "selected")
		}
		if status, ok := statuses[i]; ok {
			marks = append(marks, string(status))
		}
		if id, ok := contexts[i]; ok {
			marks = append(marks, "phrase "+shortID(id))
		}
		if r.session.WordSignals(i).Recommendation == signals.RecommendContext {
			marks = append(marks, "context?")
		}
		if len(marks) == 0 {
			fmt.Fprintf(r.out, "%4d  %s\n", i, tok)
			continue
		}
		fmt.Fprintf(r.out, "%4d  %s  [%s]\n", i, tok, strings.Join(marks, ", "))
	}
	return nil
}

func (r *repl) tap(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tap <index>...")
	}
	for _, arg := range args {
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("bad index %q", arg)
		}
		if !r.session.Toggle(idx) {
			fmt.Fprintf(r.out, "Ignored tap on %d (not next to the selection)\n", idx)
		}
	}
	fmt.Fprintf(r.out, "Selection: %s\n", strings.Join(r.session.SelectedTokens(), " "))
	return nil
}

func (r *repl) signals(ctx context.Context) error {
	res, err := r.session.ResolveSelection(ctx)
	if err != nil {
		return err
	}
	printSignals(r.out, res)
	return nil
}

func printSignals(out io.Writer, res signals.Result) {
	fmt.Fprintf(out, "Recommendation: %s (ambiguity %d, pos %s)\n", res.Recommendation, res.AmbiguityScore, res.POS)
	if res.PhrasalVerb {
		fmt.Fprintln(out, "  phrasal verb candidate")
	}
	if res.Idiomatic {
		fmt.Fprintln(out, "  idiomatic candidate")
	}
	for _, reason := range res.Reasons {
		fmt.Fprintln(out, "  •", reason)
	}
}

func (r *repl) savePhrase(ctx context.Context, args string) error {
	statusArg, meaning, _ := strings.Cut(args, " ")
	status, err := store.ParseStatus(statusArg)
	if err != nil {
		return err
	}
	rec, err := r.session.SavePhrase(ctx, meaning, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Saved phrase %q as %s (%s)\n", rec.Text, rec.Status, shortID(rec.ID))
	return nil
}

func (r *repl) saveWord(ctx context.Context, args string) error {
	fields := strings.SplitN(args, " ", 3)
	if len(fields) < 2 {
		return fmt.Errorf("usage: word <word> <status> [meaning]")
	}
	status, err := store.ParseStatus(fields[1])
	if err != nil {
		return err
	}
	meaning := ""
	if len(fields) == 3 {
		meaning = fields[2]
	}
	w, err := r.engine.SaveWord(ctx, fields[0], meaning, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Saved word %q as %s\n", w.Key, w.Status)
	return nil
}

func (r *repl) family(ctx context.Context, word string) error {
	words, err := r.engine.WordFamily(ctx, word)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		fmt.Fprintln(r.out, "No saved words in this family.")
		return nil
	}
	for _, w := range words {
		fmt.Fprintf(r.out, "  %s (%s) %s\n", w.Key, w.Status, w.Translation)
	}
	return nil
}

func (r *repl) translate(ctx context.Context, text string) error {
	res, total, err := r.engine.Translate(ctx, text, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s\n", res.Text)
	if res.DetectedSourceLang != "" {
		fmt.Fprintf(r.out, "  (from %s)\n", res.DetectedSourceLang)
	}
	fmt.Fprintf(r.out, "  %d characters translated in the last 30 days\n", total)
	return nil
}

func (r *repl) suggest(ctx context.Context) error {
	sel := r.session.SelectedTokens()
	if len(sel) == 0 {
		return fmt.Errorf("nothing selected")
	}
	suggestions, err := r.engine.Suggest(ctx, strings.Join(sel, " "), 5)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(r.out, "No similar saved phrases.")
		return nil
	}
	for _, s := range suggestions {
		fmt.Fprintf(r.out, "  %.2f  %s  %s\n", s.Score, s.Phrase.Text, s.Phrase.Translation)
	}
	return nil
}

func (r *repl) stats(ctx context.Context) error {
	s, err := r.engine.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Words: %d  learned: %d  learning: %d  not learned: %d\n",
		s.Total, s.Learned, s.Learning, s.NotLearned)

	u, err := r.engine.Usage(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Translated characters since %s: %d\n", u.StartedAt.Format("2006-01-02"), u.TotalChars)
	return nil
}

func shortID(id string) string {
	const keep = len("ctx_") + 8
	if len(id) <= keep {
		return id
	}
	return id[:keep]
}
