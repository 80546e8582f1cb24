package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelscript/dmtree/location"
)

func TestContext_ReportfAccumulates(t *testing.T) {
	ctx := NewContext()
	ctx.Reportf(location.Location{Line: 1, Column: 1}, Warning, KindLexical, "bad byte %x", 0xff)
	ctx.Reportf(location.Location{Line: 2, Column: 1}, Error, KindSyntactic, "unexpected %s", "}")

	errs := ctx.Errors()
	if assert.Len(t, errs, 2) {
		assert.Equal(t, Warning, errs[0].Severity)
		assert.Equal(t, "bad byte ff", errs[0].Message)
		assert.Equal(t, Error, errs[1].Severity)
	}
}

func TestContext_AnyErrorSeverity(t *testing.T) {
	ctx := NewContext()
	assert.False(t, ctx.AnyErrorSeverity())
	ctx.Report(location.Location{}, Hint, KindSemanticHint, "just a hint")
	assert.False(t, ctx.AnyErrorSeverity())
	ctx.Report(location.Location{}, Error, KindTree, "something is wrong")
	assert.True(t, ctx.AnyErrorSeverity())
}

func TestDiagnostic_StringIncludesCause(t *testing.T) {
	d := Diagnostic{Location: location.Location{Line: 5, Column: 6}, Severity: Error, Message: "read failed", Cause: errors.New("eof")}
	assert.Contains(t, d.String(), "5:6")
	assert.Contains(t, d.String(), "read failed")
	assert.Contains(t, d.String(), "eof")
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "hint", Hint.String())
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "error", Error.String())
}
