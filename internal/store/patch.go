package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/reelcut/reelcut/internal/patch"
	"github.com/reelcut/reelcut/internal/timeline"
)

// Journal rows store one forward patch each as a JSON array of ops. The ops
// are applied to the stored document textually with sjson, so a flush never
// decodes the full project.

type opDoc struct {
	Path  string          `json:"path"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// encodePatch converts a recorded patch to its stored JSON form. Only the
// forward direction is stored; the document never replays inverses.
func encodePatch(ops patch.Set) ([]byte, error) {
	docs := make([]opDoc, 0, len(ops))
	for _, op := range ops {
		od := opDoc{Path: op.Path, Kind: op.Kind.String()}
		if op.Kind != patch.OpRemove {
			raw, err := encodeOpValue(op.After)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op.Path, err)
			}
			od.Value = raw
		}
		docs = append(docs, od)
	}
	return json.Marshal(docs)
}

func encodeOpValue(v any) (json.RawMessage, error) {
	switch x := v.(type) {
	case nil:
		// A cleared selection; the applier deletes the key.
		return nil, nil
	case timeline.Millis:
		return json.Marshal(int64(x))
	case []string:
		return json.Marshal(x)
	case *timeline.Clip:
		return json.Marshal(clipDocOf(x))
	case *timeline.Effect:
		ed, err := effectDocOf(x)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ed)
	default:
		return nil, fmt.Errorf("unsupported patch value %T", v)
	}
}

// applyPatch folds one stored patch into the document text.
func applyPatch(doc, patchJSON string) (string, error) {
	parsed := gjson.Parse(patchJSON)
	if !parsed.IsArray() {
		return "", fmt.Errorf("patch is not an array")
	}

	var err error
	for _, op := range parsed.Array() {
		doc, err = applyOp(doc, op)
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}

func applyOp(doc string, op gjson.Result) (string, error) {
	path := op.Get("path").String()
	kind := op.Get("kind").String()
	value := op.Get("value")

	switch path {
	case "duration", "playhead":
		return sjson.Set(doc, path, value.Int())
	case "selection":
		if !value.Exists() || value.Type == gjson.Null {
			return sjson.Delete(doc, "selection")
		}
		return sjson.SetRaw(doc, "selection", value.Raw)
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 4 && parts[0] == "tracks" && parts[2] == "clips":
		ti := indexOfID(gjson.Get(doc, "tracks"), parts[1])
		if ti < 0 {
			return "", fmt.Errorf("track %s not in document", parts[1])
		}
		return applyElementOp(doc, fmt.Sprintf("tracks.%d.clips", ti), parts[3], kind, value)
	case len(parts) == 2 && parts[0] == "effects":
		return applyElementOp(doc, "effects", parts[1], kind, value)
	}
	return "", fmt.Errorf("unknown patch path %q", path)
}

// applyElementOp applies one op against an array of id-keyed objects.
func applyElementOp(doc, arrPath, id, kind string, value gjson.Result) (string, error) {
	switch kind {
	case "insert":
		if !value.Exists() {
			return "", fmt.Errorf("%s: insert without value", arrPath)
		}
		return sjson.SetRaw(doc, arrPath+".-1", value.Raw)
	case "set":
		i := indexOfID(gjson.Get(doc, arrPath), id)
		if i < 0 {
			return "", fmt.Errorf("%s: no element %s", arrPath, id)
		}
		return sjson.SetRaw(doc, fmt.Sprintf("%s.%d", arrPath, i), value.Raw)
	case "remove":
		i := indexOfID(gjson.Get(doc, arrPath), id)
		if i < 0 {
			return "", fmt.Errorf("%s: no element %s", arrPath, id)
		}
		return sjson.Delete(doc, fmt.Sprintf("%s.%d", arrPath, i))
	}
	return "", fmt.Errorf("unknown op kind %q", kind)
}

// indexOfID finds the position of the object with the given "id" within a
// JSON array, or -1.
func indexOfID(arr gjson.Result, id string) int {
	idx := -1
	i := 0
	arr.ForEach(func(_, item gjson.Result) bool {
		if item.Get("id").Str == id {
			idx = i
			return false
		}
		i++
		return true
	})
	return idx
}
