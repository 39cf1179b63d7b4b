package listing

// Strategy describes one way a listing page may be shaped. ItemSelector
// selects the repeated listing elements; LinkSelector, when set, finds the
// anchor within each item. An empty LinkSelector means the item itself is
// the anchor. Strategies are tried in order until one yields items, so the
// parser survives site redesigns by configuration rather than code changes.
type Strategy struct {
	Name         string
	ItemSelector string
	LinkSelector string
}

// CaseStrategies matches the judgment listing shapes observed on the primary
// site and its mirror.
var CaseStrategies = []Strategy{
	{
		Name:         "judgment-blocks",
		ItemSelector: "div[class*=case], div[class*=judgment], article[class*=judgment], tr[class*=decision]",
		LinkSelector: "a[href]",
	},
	{
		Name:         "judgment-links",
		ItemSelector: "a[href*=judgment], a[href*=case]",
	},
	{
		Name:         "mirror-index-links",
		ItemSelector: "a[href*='index.php?id=']",
	},
}

// LegislationStrategies matches the acts listing shapes, including the
// mirror's chapter table.
var LegislationStrategies = []Strategy{
	{
		Name:         "chapter-table",
		ItemSelector: "table.contenttable tr",
		LinkSelector: "a[href]",
	},
	{
		Name:         "act-blocks",
		ItemSelector: "div[class*=act], article[class*=legislation], li[class*=chapter], tr[class*=act]",
		LinkSelector: "a[href]",
	},
	{
		Name:         "act-links",
		ItemSelector: "a[href*=act], a[href*=legislation], a[href*=chapter]",
	},
	{
		Name:         "year-lists",
		ItemSelector: "ul.vert-two li",
		LinkSelector: "a[href]",
	},
}
