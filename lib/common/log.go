package common

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/benor/lib/errors"
)

var (
	DefaultLogLevel   logging.Lvl     = logging.LvlInfo
	DefaultLogHandler logging.Handler = logging.StreamHandler(os.Stdout, logging.TerminalFormat())
)

// logErrorKey holds the problems of a record which could not be formatted.
const logErrorKey = "LOG15_ERROR"

// logValue keeps `*errors.Error` and other json marshalers as they are, so
// the code and the data of an error reach the log.
func logValue(value interface{}) (result interface{}) {
	if v := reflect.ValueOf(value); v.Kind() == reflect.Ptr && v.IsNil() {
		return "nil"
	}

	switch v := value.(type) {
	case *errors.Error, json.Marshaler:
		return v
	case time.Time:
		return FormatISO8601(v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}

	return value
}

func logRecordProps(r *logging.Record) map[string]interface{} {
	props := map[string]interface{}{
		r.KeyNames.Time: FormatISO8601(r.Time),
		r.KeyNames.Lvl:  r.Lvl.String(),
		r.KeyNames.Msg:  r.Msg,
	}

	for i := 0; i+1 < len(r.Ctx); i += 2 {
		k, ok := r.Ctx[i].(string)
		if !ok {
			props[logErrorKey] = fmt.Sprintf("%+v is not a string key", r.Ctx[i])
			continue
		}
		props[k] = logValue(r.Ctx[i+1])
	}

	return props
}

// JsonFormatEx formats a record as one json object; with lineSeparated each
// object ends with a newline.
func JsonFormatEx(pretty, lineSeparated bool) logging.Format {
	marshal := json.Marshal
	if pretty {
		marshal = func(v interface{}) ([]byte, error) {
			return json.MarshalIndent(v, "", "    ")
		}
	}

	return logging.FormatFunc(func(r *logging.Record) []byte {
		b, err := marshal(logRecordProps(r))
		if err != nil {
			b, _ = marshal(map[string]string{logErrorKey: err.Error()})
		}
		if lineSeparated {
			b = append(b, '\n')
		}

		return b
	})
}
