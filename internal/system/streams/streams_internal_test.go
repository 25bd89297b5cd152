// Released under an MIT license. See LICENSE.

package streams

import (
	"errors"
	"io"
	"testing"
)

func TestInput(t *testing.T) {
	s := Input("aλ")

	r, err := s.ReadChar()
	if err != nil || r != 'a' {
		t.Fatalf("expected 'a', got %q (%v)", r, err)
	}

	r, _ = s.ReadChar()
	if r != 'λ' {
		t.Fatalf("expected 'λ', got %q", r)
	}

	if err := s.UnreadChar(r); err != nil {
		t.Fatal(err)
	}

	if again, _ := s.ReadChar(); again != 'λ' {
		t.Fatal("unread rune was not returned")
	}

	if _, err := s.ReadChar(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}

	if err := s.WriteRune('x'); err == nil {
		t.Fatal("input streams cannot be written")
	}
}

func TestReadByte(t *testing.T) {
	s := Input("\x01\x02")

	b, _ := s.ReadByte()
	if b != 1 {
		t.Fatalf("expected 1, got %d", b)
	}

	_ = s.UnreadChar(rune(b))

	b, _ = s.ReadByte()
	if b != 1 {
		t.Fatal("unread byte was not returned")
	}
}

func TestOutput(t *testing.T) {
	s := Output()

	for _, r := range "hello" {
		if err := s.WriteRune(r); err != nil {
			t.Fatal(err)
		}
	}

	contents, ok := s.Contents()
	if !ok || contents != "hello" {
		t.Fatalf("expected hello, got %q", contents)
	}

	if contents, _ := s.Contents(); contents != "" {
		t.Fatal("contents should reset after being read")
	}

	if _, err := s.ReadChar(); err == nil {
		t.Fatal("output streams cannot be read")
	}
}

func TestBidirectional(t *testing.T) {
	s := Bidirectional("x")

	r, _ := s.ReadChar()
	_ = s.WriteRune(r)

	if contents, _ := s.Contents(); contents != "x" {
		t.Fatalf("expected x, got %q", contents)
	}
}

func TestByteInterfaces(t *testing.T) {
	var (
		in  io.ByteReader = Input("z")
		out io.ByteWriter = Output()
	)

	if b, err := in.ReadByte(); err != nil || b != 'z' {
		t.Fatalf("expected 'z', got %q (%v)", b, err)
	}

	if err := out.WriteByte('z'); err != nil {
		t.Fatal(err)
	}

	if _, ok := Input("").(io.RuneReader); ok {
		t.Fatal("character reads are not io.RuneReader reads")
	}
}
