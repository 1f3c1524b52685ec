package lldb

import "fmt"

const xferChunk = 0x2000

// xferRead reads a whole qXfer object, following m (more) responses until
// an l (last) response arrives.
func (c *conn) xferRead(object, annex string) ([]byte, error) {
	var data []byte
	for {
		resp, err := c.exec(fmt.Sprintf("qXfer:%s:read:%s:%x,%x", object, annex, len(data), xferChunk))
		if err != nil {
			return nil, err
		}
		if err := checkError(resp); err != nil {
			return nil, fmt.Errorf("qXfer:%s: %w", object, err)
		}
		switch resp[0] {
		case 'l':
			return append(data, resp[1:]...), nil
		case 'm':
			if len(resp) == 1 {
				return nil, fmt.Errorf("qXfer:%s: empty chunk", object)
			}
			data = append(data, resp[1:]...)
		default:
			return nil, fmt.Errorf("qXfer:%s: unexpected response %q", object, resp)
		}
	}
}
