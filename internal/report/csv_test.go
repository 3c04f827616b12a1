package report

import (
	"bytes"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"SweepGo/internal/portscan"
)

func sample() portscan.Report {
	a := netip.MustParseAddr("10.0.0.2")
	b := netip.MustParseAddr("10.0.0.10")
	return portscan.Report{
		{Host: a, Port: 22, State: portscan.StateOpen, Reason: portscan.ReasonSynAck},
		{Host: a, Port: 80, State: portscan.StateClosed, Reason: portscan.ReasonReset},
		{Host: b, Port: 22, State: portscan.StateFiltered, Reason: portscan.ReasonICMP},
		{Host: b, Port: 80, State: portscan.StateFiltered, Reason: portscan.ReasonNoResponse},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	want := "IP,Port,Status,Reason\n" +
		"10.0.0.2,22,Open,SYN-ACK received\n" +
		"10.0.0.2,80,Closed,RST received\n" +
		"10.0.0.10,22,Filtered,\"ICMP unreachable (type 3, code ∈ {1,2,3,9,10,13})\"\n" +
		"10.0.0.10,80,Filtered,no response within timeout\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestRender_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "IP,Port,Status,Reason\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWrite_Idempotent(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "nested", "b.csv")
	for _, p := range []string{first, second} {
		if err := Write(p, sample()); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("identical reports produced different bytes")
	}
}

func TestWriteAtomic_OverwriteAndPreserve(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(final, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteAtomic(final, []byte("newcontent")); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	got, err := os.ReadFile(final)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "newcontent" {
		t.Fatalf("content mismatch: %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteAtomic_FailPreserveOriginal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	final := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(final, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if err := WriteAtomic(final, []byte("should-not-write")); err == nil {
		t.Fatal("expected WriteAtomic to fail on unwritable dir")
	}
	got, err := os.ReadFile(final)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Fatalf("original file was modified: %q", got)
	}
}
