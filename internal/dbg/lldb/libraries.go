package lldb

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

type library struct {
	name string
	bias uint64
}

type svr4Library struct {
	Name string `xml:"name,attr"`
	LM   string `xml:"lm,attr"`
	Addr string `xml:"l_addr,attr"`
}

type svr4List struct {
	XMLName   xml.Name      `xml:"library-list-svr4"`
	MainLM    string        `xml:"main-lm,attr"`
	Libraries []svr4Library `xml:"library"`
}

// parseLibraries decodes a libraries-svr4 document. The main program and
// entries without a file name are skipped.
func parseLibraries(data []byte) ([]library, error) {
	var list svr4List
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse library list: %w", err)
	}

	libs := make([]library, 0, len(list.Libraries))
	for _, l := range list.Libraries {
		if l.Name == "" || (list.MainLM != "" && l.LM == list.MainLM) {
			continue
		}
		bias, err := parseHex(l.Addr)
		if err != nil {
			return nil, fmt.Errorf("library %s: invalid l_addr %q", l.Name, l.Addr)
		}
		libs = append(libs, library{name: l.Name, bias: bias})
	}
	return libs, nil
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}
