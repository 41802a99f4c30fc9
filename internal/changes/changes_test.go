package changes

import (
	"context"
	"errors"
	"testing"
	"time"

	logx "flashnotify/pkg/logx"
)

type fakeRunner struct {
	stdout, stderr string
	err            error

	gotDir  string
	gotName string
	gotArgs []string
	gotCtx  context.Context
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	f.gotCtx = ctx
	f.gotDir, f.gotName, f.gotArgs = dir, name, args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func TestLatestReturnsTrimmedStdout(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{stdout: "\n  Fix pinned message lookup\n\nLonger body.\n\n"}
	r := NewReader(nil, logx.Nop(), WithRunner(fr), WithDir("/repo"))

	got := r.Latest(context.Background())
	if got != "Fix pinned message lookup\n\nLonger body." {
		t.Fatalf("Latest = %q", got)
	}
	if fr.gotName != "git" || fr.gotDir != "/repo" {
		t.Fatalf("ran %q in %q", fr.gotName, fr.gotDir)
	}
	want := []string{"log", "-1", "--pretty=%B"}
	if len(fr.gotArgs) != len(want) {
		t.Fatalf("args = %q", fr.gotArgs)
	}
	for i := range want {
		if fr.gotArgs[i] != want[i] {
			t.Fatalf("args = %q, want %q", fr.gotArgs, want)
		}
	}
}

func TestLatestFallsBackOnFailure(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{stderr: "fatal: not a git repository", err: errors.New("exit status 128")}
	r := NewReader(nil, logx.Nop(), WithRunner(fr))
	if got := r.Latest(context.Background()); got != "No recent changes" {
		t.Fatalf("Latest = %q, want fallback", got)
	}

	r = NewReader(nil, logx.Nop(), WithRunner(fr), WithFallback("nothing new"))
	if got := r.Latest(context.Background()); got != "nothing new" {
		t.Fatalf("Latest = %q, want custom fallback", got)
	}
}

func TestLatestKeepsOutputWhenStderrOnly(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{stdout: "msg\n", stderr: "warning: something"}
	r := NewReader(nil, logx.Nop(), WithRunner(fr))
	if got := r.Latest(context.Background()); got != "msg" {
		t.Fatalf("Latest = %q", got)
	}
}

func TestLatestAppliesTimeout(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{stdout: "x"}
	r := NewReader(nil, logx.Nop(), WithRunner(fr), WithTimeout(time.Minute))
	_ = r.Latest(context.Background())
	if _, ok := fr.gotCtx.Deadline(); !ok {
		t.Fatal("expected runner context to carry a deadline")
	}
}

func TestLatestWithMissingBinary(t *testing.T) {
	t.Parallel()
	r := NewReader([]string{"flashnotify-definitely-not-installed", "log"}, logx.Nop())
	if got := r.Latest(context.Background()); got != Fallback {
		t.Fatalf("Latest = %q, want fallback", got)
	}
}
