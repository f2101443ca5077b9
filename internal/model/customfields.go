package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// CustomFieldsVersion is the schema version this build understands.
const CustomFieldsVersion = 2

// Known custom-field keys. Anything else in the blob is preserved on
// round-trip but never read.
const (
	keyVersion    = "version"
	keyBuyerRole  = "buyerRole"
	keyEngagement = "engagementLevel"
	keyEnrichedBy = "enrichedBy"
)

// Buyer-group roles carried in custom fields.
const (
	BuyerRoleDecisionMaker = "decision_maker"
	BuyerRoleChampion      = "champion"
	BuyerRoleInfluencer    = "influencer"
	BuyerRoleBlocker       = "blocker"
)

// CustomFields is the typed view of a record's custom-fields JSON blob.
// Unknown keys survive a decode/encode round-trip via extra.
type CustomFields struct {
	Version         int
	BuyerRole       string
	EngagementLevel string
	EnrichedBy      string

	extra map[string]json.RawMessage
}

// ParseCustomFields decodes and validates a custom-fields blob. A nil or
// empty blob yields a zero-value struct at the current version. Blobs from
// a newer schema version are rejected rather than partially trusted.
func ParseCustomFields(raw json.RawMessage) (*CustomFields, error) {
	cf := &CustomFields{Version: CustomFieldsVersion}
	if len(raw) == 0 {
		return cf, nil
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, eris.Wrap(err, "model: decode custom fields")
	}

	take := func(key string, dst any) error {
		v, ok := all[key]
		if !ok {
			return nil
		}
		delete(all, key)
		if err := json.Unmarshal(v, dst); err != nil {
			return eris.Wrapf(err, "model: custom field %q", key)
		}
		return nil
	}

	if err := take(keyVersion, &cf.Version); err != nil {
		return nil, err
	}
	if cf.Version > CustomFieldsVersion {
		return nil, eris.Errorf("model: custom fields version %d is newer than supported %d", cf.Version, CustomFieldsVersion)
	}
	if err := take(keyBuyerRole, &cf.BuyerRole); err != nil {
		return nil, err
	}
	if err := take(keyEngagement, &cf.EngagementLevel); err != nil {
		return nil, err
	}
	if err := take(keyEnrichedBy, &cf.EnrichedBy); err != nil {
		return nil, err
	}

	if len(all) > 0 {
		cf.extra = all
	}
	return cf, nil
}

// Encode serializes the custom fields back to JSON, stamping the current
// schema version and carrying unknown keys through unchanged.
func (cf *CustomFields) Encode() (json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(cf.extra)+4)
	for k, v := range cf.extra {
		out[k] = v
	}

	put := func(key string, val any) error {
		b, err := json.Marshal(val)
		if err != nil {
			return eris.Wrapf(err, "model: encode custom field %q", key)
		}
		out[key] = b
		return nil
	}

	if err := put(keyVersion, CustomFieldsVersion); err != nil {
		return nil, err
	}
	if cf.BuyerRole != "" {
		if err := put(keyBuyerRole, cf.BuyerRole); err != nil {
			return nil, err
		}
	}
	if cf.EngagementLevel != "" {
		if err := put(keyEngagement, cf.EngagementLevel); err != nil {
			return nil, err
		}
	}
	if cf.EnrichedBy != "" {
		if err := put(keyEnrichedBy, cf.EnrichedBy); err != nil {
			return nil, err
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, eris.Wrap(err, "model: encode custom fields")
	}
	return b, nil
}
