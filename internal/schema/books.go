package schema

// Field table helpers. Positions are inclusive and 0-based.

func text(n int, name string, start, end int) FieldDefinition {
	return FieldDefinition{Number: n, Name: name, Start: start, End: end, Kind: KindText}
}

func date(n int, name string, start, end int) FieldDefinition {
	return FieldDefinition{Number: n, Name: name, Start: start, End: end, Kind: KindDate}
}

func paddedID(n int, name string, start, end int) FieldDefinition {
	return FieldDefinition{Number: n, Name: name, Start: start, End: end, Kind: KindPaddedID}
}

// money is 13 integer digits and 2 implied decimals.
func money(n int, name string, start, end int) FieldDefinition {
	return FieldDefinition{Number: n, Name: name, Start: start, End: end, Kind: KindImpliedDecimal, Decimals: 2}
}

// rate is 4 integer digits and 6 implied decimals.
func rate(n int, name string, start, end int) FieldDefinition {
	return FieldDefinition{Number: n, Name: name, Start: start, End: end, Kind: KindImpliedDecimal, Decimals: 6}
}

var registry = map[string]*BookSchema{
	SalesInvoices: {
		Key:          SalesInvoices,
		Title:        "Sales invoices",
		RecordLength: 266,
		SummedFields: []int{10, 11, 12, 13, 14, 15, 16, 21},
		Fields: []FieldDefinition{
			date(1, "Invoice date", 0, 7),
			text(2, "Invoice type", 8, 10),
			text(3, "Point of sale", 11, 15),
			text(4, "Invoice number", 16, 35),
			text(5, "Invoice number to", 36, 55),
			text(6, "Buyer document code", 56, 57),
			paddedID(7, "Buyer identification number", 58, 77),
			text(8, "Buyer name", 78, 107),
			money(9, "Total operation amount", 108, 122),
			money(10, "Concepts not part of the taxed net price", 123, 137),
			money(11, "Perception to non-categorized", 138, 152),
			money(12, "Exempt operations amount", 153, 167),
			money(13, "National tax perceptions or payments on account", 168, 182),
			money(14, "Gross income perceptions", 183, 197),
			money(15, "Municipal tax perceptions", 198, 212),
			money(16, "Internal taxes amount", 213, 227),
			text(17, "Currency code", 228, 230),
			rate(18, "Exchange rate", 231, 240),
			text(19, "Number of VAT rates", 241, 241),
			text(20, "Operation code", 242, 242),
			money(21, "Other taxes", 243, 257),
			date(22, "Due or payment date", 258, 265),
		},
	},
	SalesBreakdown: {
		Key:          SalesBreakdown,
		Title:        "Sales tax-rate breakdown",
		RecordLength: 62,
		SummedFields: []int{4, 6},
		Fields: []FieldDefinition{
			text(1, "Invoice type", 0, 2),
			text(2, "Point of sale", 3, 7),
			text(3, "Invoice number", 8, 27),
			money(4, "Taxed net amount", 28, 42),
			text(5, "VAT rate", 43, 46),
			money(6, "Settled tax", 47, 61),
		},
	},
	PurchaseInvoices: {
		Key:          PurchaseInvoices,
		Title:        "Purchase invoices",
		RecordLength: 325,
		SummedFields: []int{10, 11, 12, 13, 14, 15, 16, 21, 22, 25},
		Fields: []FieldDefinition{
			date(1, "Invoice date", 0, 7),
			text(2, "Invoice type", 8, 10),
			text(3, "Point of sale", 11, 15),
			text(4, "Invoice number", 16, 35),
			text(5, "Import clearance", 36, 51),
			text(6, "Seller document code", 52, 53),
			paddedID(7, "Seller identification number", 54, 73),
			text(8, "Seller name", 74, 103),
			money(9, "Total operation amount", 104, 118),
			money(10, "Concepts not part of the taxed net price", 119, 133),
			money(11, "Exempt operations amount", 134, 148),
			money(12, "VAT perceptions or payments on account", 149, 163),
			money(13, "National tax perceptions or payments on account", 164, 178),
			money(14, "Gross income perceptions", 179, 193),
			money(15, "Municipal tax perceptions", 194, 208),
			money(16, "Internal taxes amount", 209, 223),
			text(17, "Currency code", 224, 226),
			rate(18, "Exchange rate", 227, 236),
			text(19, "Number of VAT rates", 237, 237),
			text(20, "Operation code", 238, 238),
			money(21, "Computable tax credit", 239, 253),
			money(22, "Other taxes", 254, 268),
			text(23, "Issuer or broker CUIT", 269, 279),
			text(24, "Issuer or broker name", 280, 309),
			money(25, "VAT on commission", 310, 324),
		},
	},
	PurchaseBreakdown: {
		Key:          PurchaseBreakdown,
		Title:        "Purchase tax-rate breakdown",
		RecordLength: 84,
		SummedFields: []int{6, 8},
		Fields: []FieldDefinition{
			text(1, "Invoice type", 0, 2),
			text(2, "Point of sale", 3, 7),
			text(3, "Invoice number", 8, 27),
			text(4, "Seller document code", 28, 29),
			// The purchase breakdown marks this ID as plain alphanumeric, so it
			// keeps its zeros.
			text(5, "Seller identification number", 30, 49),
			money(6, "Taxed net amount", 50, 64),
			text(7, "VAT rate", 65, 68),
			money(8, "Settled tax", 69, 83),
		},
	},
}
