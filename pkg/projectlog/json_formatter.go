package projectlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimestampFormat = time.RFC3339
	FieldKeyMsg            = "msg"
	FieldKeyLevel          = "level"
	FieldKeyTime           = "time"
	FieldKeyFunc           = "func"
	FieldKeyFile           = "file"
	FieldModule            = "module"
)

const LogPrefixName = "zoxaa"

// LogFormat fixes the envelope of every log line. Entry fields that do not
// map to an envelope key are kept under "fields" instead of being dropped.
type LogFormat struct {
	Level    interface{}            `json:"level,omitempty"`
	Module   interface{}            `json:"module,omitempty"`
	Time     interface{}            `json:"time,omitempty"`
	File     interface{}            `json:"file,omitempty"`
	Function interface{}            `json:"function,omitempty"`
	Msg      interface{}            `json:"msg,omitempty"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

type JSONFormatter struct {
	// TimestampFormat sets the format used for marshaling timestamps.
	TimestampFormat string

	// DisableTimestamp allows disabling automatic timestamps in output
	DisableTimestamp bool

	// PrettyPrint will indent all json logs
	PrettyPrint bool
}

func (f *JSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	logFormat := &LogFormat{
		Msg:    entry.Message,
		Level:  entry.Level.String(),
		Module: LogPrefixName,
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}
	if !f.DisableTimestamp {
		logFormat.Time = entry.Time.Format(timestampFormat)
	}

	if entry.HasCaller() {
		logFormat.Function = entry.Caller.Function
		logFormat.File = fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
	}

	if len(entry.Data) > 0 {
		fields := make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			switch v := v.(type) {
			case error:
				// Otherwise errors are ignored by `encoding/json`
				// https://github.com/sirupsen/logrus/issues/137
				fields[k] = v.Error()
			default:
				fields[k] = v
			}
		}
		logFormat.Fields = fields
	}

	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	encoder := json.NewEncoder(b)
	if f.PrettyPrint {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(logFormat); err != nil {
		return nil, fmt.Errorf("failed to marshal fields to JSON, %v", err)
	}

	return b.Bytes(), nil
}
