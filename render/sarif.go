package render

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/calltrace/callpath/callgraph/core"
)

const (
	ruleUnresolvedCall = "unresolved-call"
	ruleUnreadableFile = "unreadable-file"
	toolURI            = "https://github.com/calltrace/callpath"
)

// WriteSARIF renders the build's recoverable faults as a SARIF 2.1.0 log,
// one result per dropped call site or skipped file. Paths are emitted
// repository-relative.
func WriteSARIF(w io.Writer, diags []core.Diagnostic, repoRoot string) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI("callpath", toolURI)
	run.AddRule(ruleUnresolvedCall).
		WithDescription("A call site was recognized but no resolution strategy produced a target; the edge was dropped.")
	run.AddRule(ruleUnreadableFile).
		WithDescription("A source file could not be read or parsed; calls into it were dropped.")

	for _, d := range diags {
		ruleID := ruleUnresolvedCall
		if d.Category == core.FaultFile {
			ruleID = ruleUnreadableFile
		}
		message := d.Message
		if d.Caller != "" {
			message = fmt.Sprintf("%s (in %s)", d.Message, d.Caller)
		}
		line := int(d.Line)
		if line < 1 {
			line = 1
		}
		run.CreateResultForRule(ruleID).
			WithLevel("note").
			WithMessage(sarif.NewTextMessage(message)).
			AddLocation(sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(relPath(d.FilePath, repoRoot))).
					WithRegion(sarif.NewRegion().WithStartLine(line).WithEndLine(line))))
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}
