package lldb

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const maxRetransmits = 5

type conn struct {
	remote io.ReadWriter
	br     *bufio.Reader
	ack    bool
}

func newConn(remote io.ReadWriter) *conn {
	return &conn{remote: remote, br: bufio.NewReader(remote)}
}

func (c *conn) handshake() error {
	c.ack = true

	if err := c.sendACK(true); err != nil {
		return err
	}
	if err := c.disableACK(); err != nil {
		return err
	}
	return nil
}

func (c *conn) exec(cmd string) ([]byte, error) {
	if err := c.send(cmd); err != nil {
		return nil, err
	}
	return c.recv()
}

func (c *conn) send(cmd string) error {
	p := fmt.Sprintf("$%s#%02x", cmd, checksum([]byte(cmd)))

	for i := 0; i < maxRetransmits; i++ {
		if _, err := c.remote.Write([]byte(p)); err != nil {
			return err
		}

		if !c.ack {
			return nil
		}

		ok, err := c.recvACK()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("failed to send %s after %d attempts", cmd, maxRetransmits)
}

func (c *conn) recv() ([]byte, error) {
	for i := 0; i < maxRetransmits; i++ {
		res, err := c.br.ReadBytes('#')
		if err != nil {
			return nil, err
		}

		buf := make([]byte, 2)
		if _, err := io.ReadFull(c.br, buf); err != nil {
			return nil, err
		}

		start := bytes.IndexAny(res, "$%")
		if start == -1 {
			return nil, fmt.Errorf("invalid packet: %q", res)
		}
		res = res[start:]
		if res[0] == '%' {
			continue // ignore async notifications
		}

		payload := res[1 : len(res)-1]
		sum, err := strconv.ParseUint(string(buf), 16, 8)
		if err != nil {
			return nil, err
		}
		sumOK := (uint8(sum) == checksum(payload))

		if !c.ack {
			if sumOK {
				return decode(payload), nil
			} else {
				return nil, fmt.Errorf("checksum mismatch: %s", res)
			}
		}

		if sumOK {
			if err := c.sendACK(true); err != nil {
				return nil, err
			}
			return decode(payload), nil
		}
		if err := c.sendACK(false); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to recv data after %d attempts", maxRetransmits)
}

func (c *conn) sendACK(ack bool) error {
	var err error
	if ack {
		_, err = c.remote.Write([]byte{'+'})
	} else {
		_, err = c.remote.Write([]byte{'-'})
	}
	return err
}

func (c *conn) recvACK() (bool, error) {
	b, err := c.br.ReadByte()
	if err != nil {
		return false, err
	}
	if b != '+' && b != '-' {
		return false, fmt.Errorf("invalid ack byte: %c", b)
	}
	return b == '+', nil
}

func (c *conn) disableACK() error {
	res, err := c.exec("QStartNoAckMode")
	c.ack = (string(res) != "OK")
	return err
}

func checksum(payload []byte) uint8 {
	var sum uint8
	for _, b := range payload {
		sum += b
	}
	return sum
}

// decode undoes the '}' escaping and '*' run-length encoding of a packet
// payload.
func decode(payload []byte) []byte {
	out := make([]byte, 0, len(payload))
	for i := 0; i < len(payload); i++ {
		b := payload[i]
		switch {
		case b == '}' && i+1 < len(payload):
			i++
			out = append(out, payload[i]^0x20)
		case b == '*' && i+1 < len(payload) && len(out) > 0:
			i++
			last := out[len(out)-1]
			for n := int(payload[i]) - 29; n > 0; n-- {
				out = append(out, last)
			}
		default:
			out = append(out, b)
		}
	}
	return out
}
