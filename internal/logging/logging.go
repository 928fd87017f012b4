// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

const TimestampFormat = "2006-01-02 15:04:05"

// Formats lists the accepted values for Setup's format argument.
var Formats = []string{"text", "json", "plain"}

// Setup sets level, format and output of the standard logger. A nil w
// leaves the output alone.
func Setup(level, format string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := Formatter(format)
	if err != nil {
		return err
	}

	log.SetLevel(lvl)
	log.SetFormatter(f)
	if w != nil {
		log.SetOutput(w)
	}
	return nil
}

// Formatter returns the logrus formatter registered under name.
func Formatter(name string) (log.Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return &log.TextFormatter{FullTimestamp: true, TimestampFormat: TimestampFormat}, nil
	case "json":
		return &log.JSONFormatter{TimestampFormat: TimestampFormat}, nil
	case "plain":
		return PlainFormatter{TimestampFormat: TimestampFormat}, nil
	}
	return nil, fmt.Errorf("unknown log format %q (supported: %s)", name, strings.Join(Formats, ", "))
}

// PlainFormatter prints "LEVEL time message key=value ..." lines.
type PlainFormatter struct {
	TimestampFormat string
}

func (f PlainFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %s %s", strings.ToUpper(entry.Level.String()), entry.Time.Format(f.TimestampFormat), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
