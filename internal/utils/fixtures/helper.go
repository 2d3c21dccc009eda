package fixtures

import (
	"bytes"
	"encoding/json"

	"golang.org/x/xerrors"
)

func ReadFile(pathToFile string) ([]byte, error) {
	return FixturesFS.ReadFile(pathToFile)
}

func MustReadFile(pathToFile string) []byte {
	data, err := ReadFile(pathToFile)
	if err != nil {
		panic(err)
	}

	return data
}

func UnmarshalJSON(pathToFile string, out any) error {
	return unmarshalJSON(pathToFile, out, false)
}

func MustUnmarshalJSON(pathToFile string, out any) {
	if err := UnmarshalJSON(pathToFile, out); err != nil {
		panic(err)
	}
}

// MustUnmarshalRecord decodes a record fixture and panics if the fixture
// carries a field that out does not declare.
func MustUnmarshalRecord(pathToFile string, out any) {
	if err := unmarshalJSON(pathToFile, out, true); err != nil {
		panic(err)
	}
}

func unmarshalJSON(pathToFile string, out any, strict bool) error {
	data, err := ReadFile(pathToFile)
	if err != nil {
		return xerrors.Errorf("failed to read file %v: %w", pathToFile, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	if strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(out); err != nil {
		return xerrors.Errorf("failed to unmarshal file %v: %w", pathToFile, err)
	}

	return nil
}
