package common

import (
	"encoding/json"
	"net/url"
	"os"
	"strconv"

	"github.com/google/uuid"
)

type Serializable interface {
	Serialize() ([]byte, error)
}

func GenerateUUID() string {
	return uuid.New().String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func GetUrlQuery(query url.Values, key, defaultValue string) string {
	v := query.Get(key)
	if len(v) > 0 {
		return v
	}

	return defaultValue
}

func InStringArray(a []string, s string) (index int, found bool) {
	var h string
	for index, h = range a {
		found = h == s
		if found {
			return
		}
	}

	index = -1
	return
}

func InIntArray(a []int, i int) bool {
	for _, v := range a {
		if v == i {
			return true
		}
	}

	return false
}

func MustMarshalJSON(o interface{}) []byte {
	b, _ := json.Marshal(o)
	return b
}

func MustUnmarshalJSON(data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		panic(err)
	}
}

// ParseBoolQueryString treats an empty value, like `?reverse`, as true.
func ParseBoolQueryString(v string) (bool, error) {
	if len(v) < 1 {
		return true, nil
	}

	return strconv.ParseBool(v)
}
