package matchers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/gstruct"
	"github.com/technopolitica/loadouts/internal/domain"
)

func parseJSONObject(actual any) (object map[string]any, err error) {
	var data []byte
	switch actual := actual.(type) {
	case []byte:
		data = actual
	case string:
		data = []byte(actual)
	default:
		err = fmt.Errorf("MatchJSONObject matcher actual value must be []byte or string. Got:\n%s", format.Object(actual, 1))
		return
	}
	err = json.Unmarshal(data, &object)
	if err != nil {
		err = fmt.Errorf("MatchJSONObject failed to parse JSON object from actual value: %w", err)
	}
	return
}

// MatchJSONObject matches a JSON document either against a matcher applied to
// the decoded object or against the JSON form of matchWith.
func MatchJSONObject(matchWith any) OmegaMatcher {
	switch matchWith := matchWith.(type) {
	case OmegaMatcher:
		return WithTransform(parseJSONObject, matchWith)
	default:
		return MatchJSON(JSONValue(matchWith))
	}
}

// JSONValue returns value in the shape encoding/json would decode it into.
func JSONValue(value any) string {
	serializedValue, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	return string(serializedValue)
}

func readBody(res *http.Response) ([]byte, error) {
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

// HaveAPIError matches a response carrying the error envelope with code.
func HaveAPIError(status int, code domain.ApiErrorCode) OmegaMatcher {
	return And(
		HaveHTTPStatus(status),
		WithTransform(readBody, MatchJSONObject(gstruct.MatchKeys(gstruct.IgnoreExtras, gstruct.Keys{
			"error": gstruct.MatchKeys(gstruct.IgnoreExtras, gstruct.Keys{
				"code": Equal(string(code)),
			}),
		}))),
	)
}
