package firewallcmd

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"ipset-keeper/model"
)

// IPSetInfo is the parsed output of --info-ipset.
type IPSetInfo struct {
	Name    string
	Type    model.SetType
	Options map[string]string
	Entries []string
}

func (i *IPSetInfo) Identity() model.Identity {
	return model.IdentityFromOptions(i.Type, i.Options)
}

// ParseIPSetInfo parses a block such as
//
//	whitelist
//	  type: hash:ip
//	  options: family=inet maxelem=65536
//	  entries: 10.0.0.1 10.0.0.2
//
// Options without a value (e.g. "nomatch") map to an empty string.
func ParseIPSetInfo(raw []byte) (*IPSetInfo, error) {
	info := &IPSetInfo{Options: make(map[string]string)}
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.Contains(key, " ") {
			if len(info.Name) == 0 {
				info.Name = line
			}
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case infoKeyType:
			info.Type = model.SetType(value)
		case infoKeyOptions:
			for _, item := range strings.Fields(value) {
				k, v, _ := strings.Cut(item, "=")
				info.Options[k] = v
			}
		case infoKeyEntries:
			info.Entries = strings.Fields(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(info.Type) == 0 {
		return nil, fmt.Errorf("invalid ipset info, no type found")
	}
	return info, nil
}
