package builder

import (
	"fmt"
	"strings"

	"opconsole/internal/shell"
)

// ignoreRegistration is the one-shot script that records an id for cleanup.
// Values are embedded with shell.Literal before the whole script is quoted.
const ignoreRegistration = "from addIgnore import add_ignore_entry; add_ignore_entry(%s, %s, name=%s)"

// KillBuilder builds the cleanup sequence: one registration line per selected
// entry, preceded by killFabriks.py when "run now" is set.
type KillBuilder struct {
	python string
}

func NewKillBuilder(python string) *KillBuilder {
	return &KillBuilder{python: python}
}

func (b *KillBuilder) Script() ScriptID { return ScriptKill }
func (b *KillBuilder) Title() string    { return "Cleanup" }
func (b *KillBuilder) Default() string  { return defaultLine(b.python, KillScript) }

func (b *KillBuilder) Build(in Input) (string, error) {
	f := in.Form
	runNow := f.Checked(FieldRunNow)

	kill := newArgv(b.python, KillScript)
	kill.flag("--verbose", f.Checked(FieldVerbose))

	if len(in.Selection) == 0 && !runNow {
		return b.Default(), nil
	}

	lines := make([]string, 0, len(in.Selection)+1)
	if runNow {
		lines = append(lines, kill.String())
	}
	for _, entry := range in.Selection {
		if entry.ID == "" {
			return "", fmt.Errorf("selection entry of type %s has no id", entry.Type)
		}
		script := fmt.Sprintf(ignoreRegistration,
			shell.Literal(string(entry.Type)),
			shell.Literal(entry.ID),
			shell.Literal(entry.Name))
		lines = append(lines, shell.Join(b.python, "-c", script))
	}
	return strings.Join(lines, "\n"), nil
}

// CleanBuilder builds clean_data.py invocations
type CleanBuilder struct {
	python string
}

func NewCleanBuilder(python string) *CleanBuilder {
	return &CleanBuilder{python: python}
}

func (b *CleanBuilder) Script() ScriptID { return ScriptClean }
func (b *CleanBuilder) Title() string    { return "Clean data" }
func (b *CleanBuilder) Default() string  { return defaultLine(b.python, CleanScript) }

func (b *CleanBuilder) Build(in Input) (string, error) {
	f := in.Form
	targets := append(f.Values(FieldCleanTarget), f.List(FieldTarget)...)
	for _, t := range targets {
		if err := choice("target", t, CleanTargets...); err != nil {
			return "", err
		}
	}

	a := newArgv(b.python, CleanScript)
	a.flag("--dry-run", f.Checked(FieldDryRun))
	a.flag("--force", f.Checked(FieldForce))
	a.repeat("--target", targets)
	a.flag("--list-targets", f.Checked(FieldListTargets))
	return a.String(), nil
}

// PipelineBuilder builds main.py invocations (the full export chain)
type PipelineBuilder struct {
	python string
}

func NewPipelineBuilder(python string) *PipelineBuilder {
	return &PipelineBuilder{python: python}
}

func (b *PipelineBuilder) Script() ScriptID { return ScriptPipeline }
func (b *PipelineBuilder) Title() string    { return "Pipeline" }
func (b *PipelineBuilder) Default() string  { return defaultLine(b.python, PipelineScript) }

func (b *PipelineBuilder) Build(in Input) (string, error) {
	f := in.Form
	steps := f.Values(FieldSteps)
	skip := f.Values(FieldSkip)
	for _, s := range append(append([]string(nil), steps...), skip...) {
		if err := choice("step", s, PipelineSteps...); err != nil {
			return "", err
		}
	}
	level := strings.ToUpper(f.Text(FieldLogLevel))
	if err := choice("log level", level, LogLevels...); err != nil {
		return "", err
	}

	a := newArgv(b.python, PipelineScript)
	a.list("--steps", steps)
	a.list("--skip", skip)
	a.option("--log-level", level, DefaultLogLevel)
	return a.String(), nil
}
