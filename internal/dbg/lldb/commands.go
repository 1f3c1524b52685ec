package lldb

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

type processInfo struct {
	pid  int
	name string
}

// run launches program with args through the A packet and waits for the
// server to confirm the launch.
func (c *conn) run(program string, args []string) error {
	argv := append([]string{program}, args...)

	var b strings.Builder
	b.WriteByte('A')
	for i, arg := range argv {
		if i > 0 {
			b.WriteByte(',')
		}
		enc := hex.EncodeToString([]byte(arg))
		fmt.Fprintf(&b, "%d,%d,%s", len(enc), i, enc)
	}

	resp, err := c.exec(b.String())
	if err != nil {
		return err
	}
	if err := expectOK(resp); err != nil {
		return fmt.Errorf("launch %s: %w", program, err)
	}

	resp, err = c.exec("qLaunchSuccess")
	if err != nil {
		return err
	}
	if err := expectOK(resp); err != nil {
		return fmt.Errorf("launch %s: %w", program, err)
	}
	return nil
}

func (c *conn) getProcessInfo() (*processInfo, error) {
	resp, err := c.exec("qProcessInfo")
	if err != nil {
		return nil, err
	}
	kv, err := parseKeyValues(resp)
	if err != nil {
		return nil, err
	}
	pid, err := strconv.ParseInt(kv["pid"], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid pid in %q: %w", resp, err)
	}
	return &processInfo{pid: int(pid)}, nil
}

func (c *conn) getProcessInfoPID(pid int) (*processInfo, error) {
	resp, err := c.exec(fmt.Sprintf("qProcessInfoPID:%d", pid))
	if err != nil {
		return nil, err
	}
	kv, err := parseKeyValues(resp)
	if err != nil {
		return nil, err
	}
	name, err := hex.DecodeString(kv["name"])
	if err != nil {
		return nil, fmt.Errorf("invalid name in %q: %w", resp, err)
	}
	return &processInfo{pid: pid, name: string(name)}, nil
}

func (c *conn) detach() error {
	resp, err := c.exec("D")
	if err != nil {
		return err
	}
	return expectOK(resp)
}

// parseKeyValues splits a "key:value;key:value;" response.
func parseKeyValues(resp []byte) (map[string]string, error) {
	if err := checkError(resp); err != nil {
		return nil, err
	}
	kv := make(map[string]string)
	for _, field := range bytes.Split(resp, []byte{';'}) {
		if len(field) == 0 {
			continue
		}
		k, v, ok := bytes.Cut(field, []byte{':'})
		if !ok {
			return nil, fmt.Errorf("malformed field %q", field)
		}
		kv[string(k)] = string(v)
	}
	return kv, nil
}

func expectOK(resp []byte) error {
	if err := checkError(resp); err != nil {
		return err
	}
	if string(resp) != "OK" {
		return fmt.Errorf("unexpected response: %q", resp)
	}
	return nil
}

// checkError reports an "Exx" error response.
func checkError(resp []byte) error {
	if len(resp) == 0 {
		return fmt.Errorf("unsupported packet")
	}
	if len(resp) == 3 && resp[0] == 'E' {
		if code, err := strconv.ParseUint(string(resp[1:]), 16, 8); err == nil {
			return fmt.Errorf("remote error %d", code)
		}
	}
	return nil
}
