package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// MergeJSON overlays the keys of overlay onto base and returns the merged
// document. Empty inputs pass the other side through unchanged. Used for
// partial metadata updates and for folding layout hints into a child
// block's metadata.
func MergeJSON(base, overlay datatypes.JSON) (datatypes.JSON, error) {
	if len(overlay) == 0 {
		return base, nil
	}
	if len(base) == 0 {
		return overlay, nil
	}

	var baseMap, overlayMap map[string]any
	if err := json.Unmarshal(base, &baseMap); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(overlay, &overlayMap); err != nil {
		return nil, err
	}
	for k, v := range overlayMap {
		baseMap[k] = v
	}

	merged, err := json.Marshal(baseMap)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(merged), nil
}
