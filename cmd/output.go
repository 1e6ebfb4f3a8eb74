package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"firestige.xyz/sentinel/pkg/sentinel"
)

// Output formats accepted by -o.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatText  = "text"
)

var (
	tableBorderColor = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	tableBorderStyle = lipgloss.NewStyle().Foreground(tableBorderColor)
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML, formatText:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (must be table/json/yaml/text)", format)
	}
}

// interfaceView is an interface entry plus whether automatic selection
// would pick it.
type interfaceView struct {
	sentinel.Interface `yaml:",inline"`
	Selected           bool `json:"selected" yaml:"selected"`
}

func writeInterfaces(w io.Writer, format string, views []interfaceView) error {
	switch format {
	case formatJSON:
		return writeJSON(w, views)
	case formatYAML:
		return writeYAML(w, views)
	case formatText:
		for _, v := range views {
			marker := " "
			if v.Selected {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s\n", marker, v.Interface)
		}
		return nil
	default:
		rows := make([][]string, 0, len(views))
		for _, v := range views {
			marker := ""
			if v.Selected {
				marker = "*"
			}
			addrs := make([]string, 0, len(v.Addrs))
			for _, a := range v.Addrs {
				addrs = append(addrs, a.String())
			}
			rows = append(rows, []string{
				marker,
				v.Name,
				strings.Join(addrs, "\n"),
				strconv.FormatBool(v.Up),
				strconv.FormatBool(v.Loopback),
				strconv.Itoa(v.MTU),
				v.HardwareAddr,
			})
		}
		return writeTable(w, []string{"", "NAME", "ADDRESSES", "UP", "LOOPBACK", "MTU", "MAC"}, rows)
	}
}

func writeRecords(w io.Writer, format string, records []sentinel.Record) error {
	switch format {
	case formatJSON:
		return writeJSON(w, records)
	case formatYAML:
		return writeYAML(w, records)
	case formatText:
		for _, r := range records {
			fmt.Fprintln(w, r.String())
		}
		return nil
	default:
		rows := make([][]string, 0, len(records))
		for i, r := range records {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				string(r.Protocol),
				r.SourceIP,
				r.DestIP,
				strconv.Itoa(r.Size),
			})
		}
		return writeTable(w, []string{"#", "PROTOCOL", "SOURCE", "DESTINATION", "SIZE"}, rows)
	}
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
