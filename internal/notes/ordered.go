package notes

import (
	"bytes"
	"encoding/json"
	"os"
)

// member is one key/value pair of the notes.json object. encoding/json
// maps lose member order, so the document is streamed token by token on
// read and assembled by hand on write.
type member struct {
	key   string
	value string
}

// readOrdered parses the JSON object at path preserving member order. A
// missing or malformed file yields a nil document and no error.
func readOrdered(path string) ([]member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	doc, err := decodeOrdered(data)
	if err != nil {
		return nil, nil
	}
	return doc, nil
}

func decodeOrdered(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}

	var doc []member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &json.UnmarshalTypeError{Value: "non-string key", Type: nil}
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		doc = append(doc, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

func encodeOrdered(doc []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, m := range doc {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(doc) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}
