// Package cardsheet merges spreadsheet rows into a card template and renders
// printable PDF sheets of tabletop-game cards.
//
// # Quick Start
//
// Load a template and a data file, then convert:
//
//	tpl, err := cardsheet.LoadTemplate("monster.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	records, err := cardsheet.LoadRecords("monsters.csv", cardsheet.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv, err := cardsheet.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := conv.Convert(ctx, cardsheet.Input{
//	    Template: tpl,
//	    Records:  records,
//	    Cards:    9,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = result.WriteFile("monsters.pdf")
//
// # Pipeline
//
// Each record goes through these stages:
//
//  1. Merge: columns whose header starts with the marker ("@" by default) bind
//     to the shape of the same name (text, image path, QR code or barcode value)
//  2. Layout: the card is scaled uniformly into its grid slot, 9-up as a 3x3
//     grid or 8-up as 2x4 cards turned a quarter clockwise
//  3. Render: shapes are clipped to their outline and drawn with gofpdf;
//     text is wrapped to the shape width and trimmed to its height
//
// Without Cards (0), each record fills one page. Without records, the
// template is rendered once with its default text and images.
//
// # Templates
//
// Templates are JSON or YAML. Coordinates use the template unit (pt, px, in,
// mm or cm) with the origin at the top-left corner:
//
//	{
//	  "unit": "mm",
//	  "page": {"width": 63, "height": 88},
//	  "shapes": [
//	    {"name": "Title", "kind": "text", "x": 4, "y": 4, "width": 55, "height": 8,
//	     "font": {"style": "B", "size": 14}, "align": "center"},
//	    {"name": "Art", "kind": "image", "x": 4, "y": 14, "width": 55, "height": 40,
//	     "fit": "cover", "outline": "rectangle", "lineWidth": 0.5}
//	  ]
//	}
//
// # Missing Images
//
// By default a missing or undecodable image aborts the run and nothing is
// written. WithMissingPolicy(MissingSkip) drops the record instead and lists
// its index in Result.Skipped.
package cardsheet
