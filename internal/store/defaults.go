package store

import (
	"github.com/shopspring/decimal"

	"cable-quote/pkg/api"
)

// Built-in default catalogues, used until a supplier upload overrides them.
// Prices are INR per metre for cables and INR per test for the schedule.

func defaultPricingCatalogue() []api.CatalogEntry {
	entry := func(sku, name string, voltage, area, cores float64, conductor, insulation string, armoured bool, temp float64, standard string, price string) api.CatalogEntry {
		p, _ := decimal.NewFromString(price)
		return api.CatalogEntry{
			SKU:         sku,
			Name:        name,
			UnitPrice:   p,
			VoltageKV:   api.Float(voltage),
			AreaSqmm:    api.Float(area),
			Cores:       api.Float(cores),
			Conductor:   api.Str(conductor),
			Insulation:  api.Str(insulation),
			Armoured:    api.Bool(armoured),
			TempRatingC: api.Float(temp),
			Standard:    api.Str(standard),
		}
	}

	return []api.CatalogEntry{
		entry("HT-CU-11-120-3C", "11kV 3C x 120 sqmm Cu XLPE Armoured", 11, 120, 3, "Copper", "XLPE", true, 90, "IS 7098", "2450.00"),
		entry("HT-CU-11-240-3C", "11kV 3C x 240 sqmm Cu XLPE Armoured", 11, 240, 3, "Copper", "XLPE", true, 90, "IS 7098", "4320.00"),
		entry("HT-AL-11-240-3C", "11kV 3C x 240 sqmm Al XLPE Armoured", 11, 240, 3, "Aluminium", "XLPE", true, 90, "IS 7098", "1980.00"),
		entry("HT-AL-11-400-3C", "11kV 3C x 400 sqmm Al XLPE Armoured", 11, 400, 3, "Aluminium", "XLPE", true, 90, "IS 7098", "2890.00"),
		entry("HT-CU-33-240-3C", "33kV 3C x 240 sqmm Cu XLPE Armoured", 33, 240, 3, "Copper", "XLPE", true, 90, "IS 7098", "6150.00"),
		entry("HT-AL-33-400-3C", "33kV 3C x 400 sqmm Al XLPE Armoured", 33, 400, 3, "Aluminium", "XLPE", true, 90, "IS 7098", "3740.00"),
		entry("LT-CU-1-95-4C", "1.1kV 4C x 95 sqmm Cu PVC Armoured", 1.1, 95, 4, "Copper", "PVC", true, 70, "IS 1554", "1240.00"),
		entry("LT-AL-1-185-4C", "1.1kV 4C x 185 sqmm Al PVC Armoured", 1.1, 185, 4, "Aluminium", "PVC", true, 70, "IS 1554", "780.00"),
		entry("LT-CU-1-35-4C", "1.1kV 4C x 35 sqmm Cu XLPE Unarmoured", 1.1, 35, 4, "Copper", "XLPE", false, 90, "IS 7098", "560.00"),
		entry("LT-AL-1-50-2C", "1.1kV 2C x 50 sqmm Al PVC Unarmoured", 1.1, 50, 2, "Aluminium", "PVC", false, 70, "IS 1554", "310.00"),
	}
}

func defaultTestingSchedule() []api.CatalogEntry {
	test := func(sku, name, price string) api.CatalogEntry {
		p, _ := decimal.NewFromString(price)
		return api.CatalogEntry{SKU: sku, Name: name, UnitPrice: p}
	}

	return []api.CatalogEntry{
		test("TST-HV", "High Voltage Withstand Test", "18000.00"),
		test("TST-IR", "Insulation Resistance Test", "6500.00"),
		test("TST-CR", "Conductor Resistance Test", "5500.00"),
		test("TST-PD", "Partial Discharge Test", "24000.00"),
		test("TST-TAN", "Tan Delta Measurement", "15000.00"),
		test("TST-FLAME", "Flame Retardance Test", "9500.00"),
	}
}
