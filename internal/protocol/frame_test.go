package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// TestTextFrameRoundTrip verifies that a line "-m " + T is framed and decoded
// back to exactly T.
func TestTextFrameRoundTrip(t *testing.T) {
	texts := []string{
		"Hello",
		"",
		" leading space",
		"trailing space ",
		"multiple   inner   spaces",
		"unicode: héllo wörld 你好",
		string(bytes.Repeat([]byte("x"), 64*1024)),
	}

	for _, text := range texts {
		name := text
		if len(name) > 32 {
			name = name[:32]
		}
		t.Run(name, func(t *testing.T) {
			cmd, err := ParseLine("-m " + text)
			if err != nil {
				t.Fatalf("ParseLine: %v", err)
			}
			st, ok := cmd.(SendText)
			if !ok {
				t.Fatalf("ParseLine returned %T, want SendText", cmd)
			}

			var buf bytes.Buffer
			if err := WriteText(&buf, st.Body); err != nil {
				t.Fatalf("WriteText: %v", err)
			}

			frame, err := ReadFrame(&buf)
			if err != nil {
				t.Fatalf("ReadFrame: %v", err)
			}
			tf, ok := frame.(*TextFrame)
			if !ok {
				t.Fatalf("ReadFrame returned %T, want *TextFrame", frame)
			}
			if tf.Body != text {
				t.Errorf("body = %q, want %q", tf.Body, text)
			}
			if buf.Len() != 0 {
				t.Errorf("%d trailing bytes left on stream", buf.Len())
			}
		})
	}
}

// TestTextFrameLayout pins the exact bytes of a text frame.
func TestTextFrameLayout(t *testing.T) {
	got := AppendText(nil, "Hello")
	want := []byte{
		0, 0, 0, 2, '-', 'm',
		0, 0, 0, 5, 'H', 'e', 'l', 'l', 'o',
	}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendText = %x, want %x", got, want)
	}
}

// TestFileHeaderLayout pins the exact bytes of the file command and metadata
// segments: u32 cmdLen, "-f", u64 fileLen, u32 nameLen, name.
func TestFileHeaderLayout(t *testing.T) {
	got := AppendFileHeader(nil, FileHeader{Length: 2500, Name: "notes.txt"})
	want := []byte{
		0, 0, 0, 2, '-', 'f',
		0, 0, 0, 0, 0, 0, 0x09, 0xC4,
		0, 0, 0, 9, 'n', 'o', 't', 'e', 's', '.', 't', 'x', 't',
	}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendFileHeader = %x, want %x", got, want)
	}

	frame, err := ReadFrame(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	ff, ok := frame.(*FileFrame)
	if !ok {
		t.Fatalf("ReadFrame returned %T, want *FileFrame", frame)
	}
	if ff.Header.Length != 2500 || ff.Header.Name != "notes.txt" {
		t.Errorf("header = %+v", ff.Header)
	}
}

// TestReadFrameUnknownTag verifies that an unexpected tag is fatal.
func TestReadFrameUnknownTag(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"other two-byte tag", []byte{0, 0, 0, 2, '-', 'x', 0, 0, 0, 0}},
		{"empty tag", []byte{0, 0, 0, 0}},
		{"oversized tag", []byte{0, 0, 0x10, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tc.data))
			if !errors.Is(err, ErrUnknownCommand) {
				t.Fatalf("err = %v, want ErrUnknownCommand", err)
			}
		})
	}
}

// TestReadFrameTruncated verifies that every truncation point reports a
// closed stream rather than a partial frame.
func TestReadFrameTruncated(t *testing.T) {
	full := AppendText(nil, "Hello")
	for cut := 0; cut < len(full); cut++ {
		_, err := ReadFrame(bytes.NewReader(full[:cut]))
		if !errors.Is(err, ErrStreamClosed) {
			t.Errorf("cut at %d: err = %v, want ErrStreamClosed", cut, err)
		}
	}
}

// TestReadFrameSequence verifies frame boundaries across back-to-back frames.
func TestReadFrameSequence(t *testing.T) {
	var buf []byte
	buf = AppendText(buf, "first")
	buf = AppendText(buf, "second")
	buf = AppendFileHeader(buf, FileHeader{Length: 0, Name: "empty.bin"})
	buf = AppendText(buf, "third")

	r := bytes.NewReader(buf)
	wantTags := []Tag{TagText, TagText, TagFile, TagText}
	for i, want := range wantTags {
		frame, err := ReadFrame(r)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if frame.Tag() != want {
			t.Errorf("frame %d: tag = %s, want %s", i, frame.Tag(), want)
		}
	}
}

// TestReadFileHeaderNameTooLong verifies that the name field is bounded.
func TestReadFileHeaderNameTooLong(t *testing.T) {
	var data []byte
	data = append(data, PutU64(10)...)
	data = append(data, PutU32(MaxNameLength+1)...)
	data = append(data, bytes.Repeat([]byte("n"), MaxNameLength+1)...)

	_, err := ReadFileHeader(bytes.NewReader(data))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}

	name := string(bytes.Repeat([]byte("n"), MaxNameLength))
	hdr, err := ReadFileHeader(bytes.NewReader(AppendFileHeader(nil, FileHeader{Length: 10, Name: name})[6:]))
	if err != nil || hdr.Name != name {
		t.Fatalf("name of MaxNameLength bytes: %v", err)
	}
}
