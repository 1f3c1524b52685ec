package dap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const contentLength = "Content-Length"

// maxContentLength bounds the body of a single message.
const maxContentLength = 16 << 20

type message interface {
	seq() int
	setSeq(int)
}

type baseMessage struct {
	Seq  int    `json:"seq"`
	Type string `json:"type"`
}

func (m *baseMessage) seq() int       { return m.Seq }
func (m *baseMessage) setSeq(seq int) { m.Seq = seq }

type request struct {
	baseMessage

	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type event struct {
	baseMessage

	Event string                 `json:"event"`
	Body  map[string]interface{} `json:"body,omitempty"`
}

type response struct {
	baseMessage

	RequestSeq int                    `json:"request_seq"`
	Success    bool                   `json:"success"`
	Command    string                 `json:"command"`
	Message    string                 `json:"message,omitempty"`
	Body       map[string]interface{} `json:"body,omitempty"`
}

type errorMessage struct {
	Id        int               `json:"id"`
	Format    string            `json:"format"`
	Variables map[string]string `json:"variables,omitempty"`
	ShowUser  bool              `json:"showUser"`
}

// readHeaders consumes the header block of a message and returns its
// content length. Headers other than Content-Length are ignored.
func readHeaders(r *bufio.Reader) (int64, error) {
	length := int64(-1)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return 0, fmt.Errorf("invalid header: %q", line)
		}
		if !strings.EqualFold(strings.TrimSpace(name), contentLength) {
			continue
		}
		length, err = strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || length < 0 {
			return 0, fmt.Errorf("invalid %s: %q", contentLength, value)
		}
		if length > maxContentLength {
			return 0, fmt.Errorf("%s %d exceeds %d bytes", contentLength, length, maxContentLength)
		}
	}
	if length < 0 {
		return 0, fmt.Errorf("missing %s header", contentLength)
	}
	return length, nil
}

func readMessage(r *bufio.Reader) (message, error) {
	n, err := readHeaders(r)
	if err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	var base baseMessage
	if err := json.Unmarshal(body, &base); err != nil {
		return nil, err
	}
	var m message
	switch base.Type {
	case "request":
		m = &request{}
	case "event":
		m = &event{}
	case "response":
		m = &response{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", body)
	}
	if err := json.Unmarshal(body, m); err != nil {
		return nil, err
	}
	return m, nil
}

// msgWriter numbers outgoing messages and frames them with a header.
type msgWriter struct {
	w   io.Writer
	seq int
}

func (mw *msgWriter) write(m message) error {
	mw.seq++
	m.setSeq(mw.seq)

	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(mw.w, "%s: %d\r\n\r\n", contentLength, len(b)); err != nil {
		return err
	}
	_, err = mw.w.Write(b)
	return err
}

func newEvent(name string, info map[string]interface{}) *event {
	return &event{
		baseMessage: baseMessage{Type: "event"},
		Event:       name,
		Body:        info,
	}
}

func newResponse(req *request, result map[string]interface{}) *response {
	return &response{
		baseMessage: baseMessage{Type: "response"},
		RequestSeq:  req.Seq,
		Success:     true,
		Command:     req.Command,
		Body:        result,
	}
}

func newErrResponse(req message, id int, cmd, msg, details string, show bool) *response {
	e := errorMessage{
		Id:       id,
		Format:   details,
		ShowUser: show,
	}
	return &response{
		baseMessage: baseMessage{Type: "response"},
		RequestSeq:  req.seq(),
		Success:     false,
		Command:     cmd,
		Message:     msg,
		Body:        map[string]interface{}{"error": e},
	}
}
