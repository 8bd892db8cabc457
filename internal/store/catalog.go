package store

import (
	"fmt"

	"cable-quote/pkg/api"
	"cable-quote/pkg/util"
)

// EntriesFromRows converts canonical-keyed raw rows into catalogue entries,
// coercing cell text into typed attributes. Rows without a usable price
// are kept with a zero price rather than dropped, so the caller can still
// inspect them.
func EntriesFromRows(rows []map[string]string) []api.CatalogEntry {
	entries := make([]api.CatalogEntry, 0, len(rows))
	for i, row := range rows {
		entry := api.CatalogEntry{
			SKU:  row["sku"],
			Name: row["name"],
		}
		if entry.SKU == "" {
			entry.SKU = fmt.Sprintf("ROW-%d", i+1)
		}

		if price, ok := util.ParsePriceCell(row["unit_price"]); ok {
			entry.UnitPrice = price
		}
		if v, ok := util.ParseNumericCell(row[api.AttrVoltage]); ok {
			entry.VoltageKV = api.Float(v)
		}
		if v, ok := util.ParseNumericCell(row[api.AttrArea]); ok {
			entry.AreaSqmm = api.Float(v)
		}
		if v, ok := util.ParseNumericCell(row[api.AttrCores]); ok {
			entry.Cores = api.Float(v)
		}
		if v, ok := util.ParseNumericCell(row[api.AttrTempRating]); ok {
			entry.TempRatingC = api.Float(v)
		}
		if s := row[api.AttrConductor]; s != "" {
			entry.Conductor = api.Str(s)
		}
		if s := row[api.AttrInsulation]; s != "" {
			entry.Insulation = api.Str(s)
		}
		if s := row[api.AttrStandard]; s != "" {
			entry.Standard = api.Str(s)
		}
		if b, ok := util.ParseBoolCell(row[api.AttrArmoured]); ok {
			entry.Armoured = api.Bool(b)
		}

		entries = append(entries, entry)
	}
	return entries
}
