package term

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"gni.dev/dbg/internal/dbg/debugger"
)

type MockTerminal struct {
	input     io.Reader
	chunkSize int
	output    bytes.Buffer
}

func NewMockTerminal(input string, ch int) *MockTerminal {
	return &MockTerminal{
		input:     strings.NewReader(input),
		chunkSize: ch,
	}
}

func (c *MockTerminal) Read(data []byte) (int, error) {
	b := make([]byte, c.chunkSize)
	_, err := c.input.Read(b)
	if err != nil {
		return 0, err
	}
	return copy(data, b), nil
}

func (c *MockTerminal) Write(data []byte) (int, error) {
	return c.output.Write(data)
}

var inputTests = []struct {
	input      string
	want       string
	skeepLines int
}{
	{
		input: "hello\n",
		want:  "hello",
	},
	{
		input: "hello\r\n",
		want:  "hello",
	},
	{
		input: "hello\r", // raw mode enter
		want:  "hello",
	},
	{
		input:      "a\r\nb\r\n",
		want:       "b",
		skeepLines: 1,
	},
	{
		input:      "a\rb\r",
		want:       "b",
		skeepLines: 1,
	},
	{
		input: "aabb\x1b[D\x1b[D\177\n", // backspace
		want:  "abb",
	},
	{
		input: "a\177\x1b[C\177\n", // backspace
		want:  "",
	},
	{
		input: "u\t0x10\n", // complete a unique command
		want:  "uf 0x10",
	},
	{
		input: "l\tm\n", // ambiguous completion beeps
		want:  "lm",
	},
	{
		input: "dv\t\tn\n",
		want:  "dv n",
	},
	{
		input: strings.Repeat("x", 200) + "\n",
		want:  strings.Repeat("x", 200),
	},
}

func TestInput(t *testing.T) {
	for i, test := range inputTests {
		for j := 1; j < len(test.input); j++ {
			screen := NewMockTerminal(test.input, j)
			tt := New(screen, "> ", debugger.New(zerolog.Nop()))
			for k := 0; k < test.skeepLines; k++ {
				_, err := tt.readLine()
				assert.NoError(t, err, "test #%d", i)
			}
			line, err := tt.readLine()
			assert.Equal(t, test.want, line, "test #%d", i)
			assert.NoError(t, err, "test #%d", i)
		}
	}
}

var renderTests = []struct {
	input string
	want  string
}{
	{
		input: "hello\n",
		want:  "> hello\r\n",
	},
	{
		input: "hello\r\n",
		want:  "> hello\r\n",
	},
}

func TestRender(t *testing.T) {
	for i, test := range renderTests {
		for j := 1; j < len(test.input); j++ {
			screen := NewMockTerminal(test.input, j)
			tt := New(screen, "> ", debugger.New(zerolog.Nop()))
			_, err := tt.readLine()
			assert.Equal(t, test.want, screen.output.String(), "test #%d", i)
			assert.NoError(t, err, "test #%d", i)
		}
	}
}

func TestCtrlD(t *testing.T) {
	screen := NewMockTerminal("\x04", 1)
	tt := New(screen, "> ", debugger.New(zerolog.Nop()))
	_, err := tt.readLine()
	assert.Equal(t, io.EOF, err)

	screen = NewMockTerminal("ab\x04c\n", 1)
	tt = New(screen, "> ", debugger.New(zerolog.Nop()))
	line, err := tt.readLine()
	assert.NoError(t, err)
	assert.Equal(t, "abc", line)
}

var crlfTests = []struct {
	input []string
	want  string
}{
	{input: []string{"a\nb\n"}, want: "a\r\nb\r\n"},
	{input: []string{"a\r\n"}, want: "a\r\n"},
	{input: []string{"a\r", "\nb"}, want: "a\r\nb"},
	{input: []string{"\n\n"}, want: "\r\n\r\n"},
}

func TestCRLFWriter(t *testing.T) {
	for i, test := range crlfTests {
		var out bytes.Buffer
		w := &crlfWriter{w: &out}
		for _, in := range test.input {
			n, err := w.Write([]byte(in))
			assert.NoError(t, err, "test #%d", i)
			assert.Equal(t, len(in), n, "test #%d", i)
		}
		assert.Equal(t, test.want, out.String(), "test #%d", i)
	}
}
