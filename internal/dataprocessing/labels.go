package dataprocessing

import (
	"context"
	"log/slog"

	"cbpdash/pkg/contracts/domain"
)

// Dimension names a categorical column that carries the sentinel.
type Dimension string

const (
	DimensionOrgForm    Dimension = "org_form"
	DimensionSizeBucket Dimension = "size_bucket"
)

// OrgFormLabels maps legal form of organization to its short display label.
var OrgFormLabels = map[string]string{
	"C-corporations and other corporate legal forms of organization": "C-Corporations",
	"S-corporations":             "S-Corporations",
	"Individual proprietorships": "Individual Proprietorships",
	"Partnerships":               "Partnerships",
	"Non-profit":                 "Non-Profit",
	"Government":                 "Government",
	"Other noncorporate legal forms of organization": "Other Noncorporate",
}

// SizeLabels maps employment size buckets to their short display label.
var SizeLabels = map[string]string{
	domain.Sentinel: "All",
	"Establishments with less than 5 employees":   "<5",
	"Establishments with 5 to 9 employees":        "5-9",
	"Establishments with 10 to 19 employees":      "10-19",
	"Establishments with 20 to 49 employees":      "20-49",
	"Establishments with 50 to 99 employees":      "50-99",
	"Establishments with 100 to 249 employees":    "100-249",
	"Establishments with 250 to 499 employees":    "250-499",
	"Establishments with 500 to 999 employees":    "500-999",
	"Establishments with 1,000 employees or more": "1,000+",
}

// SizeOrder is the categorical axis order of every size-bucket chart.
var SizeOrder = []string{"<5", "5-9", "10-19", "20-49", "50-99", "100-249", "250-499", "500-999", "1,000+"}

var sizeRank = func() map[string]int {
	rank := make(map[string]int, len(SizeOrder))
	for i, label := range SizeOrder {
		rank[label] = i
	}
	return rank
}()

// sizePosition returns the display position of a short size label.
// Unknown labels sort after every known bucket.
func sizePosition(label string) int {
	if i, ok := sizeRank[label]; ok {
		return i
	}
	return len(SizeOrder)
}

// SectorTitles maps 2-digit NAICS sector codes to their titles.
var SectorTitles = map[string]string{
	domain.AllSectors: "Total for all sectors",
	"11":              "Agriculture, Forestry, Fishing and Hunting",
	"21":              "Mining, Quarrying, and Oil and Gas Extraction",
	"22":              "Utilities",
	"23":              "Construction",
	"31-33":           "Manufacturing",
	"42":              "Wholesale Trade",
	"44-45":           "Retail Trade",
	"48-49":           "Transportation and Warehousing",
	"51":              "Information",
	"52":              "Finance and Insurance",
	"53":              "Real Estate and Rental and Leasing",
	"54":              "Professional, Scientific, and Technical Services",
	"55":              "Management of Companies and Enterprises",
	"56":              "Administrative and Support and Waste Management and Remediation Services",
	"61":              "Educational Services",
	"62":              "Health Care and Social Assistance",
	"71":              "Arts, Entertainment, and Recreation",
	"72":              "Accommodation and Food Services",
	"81":              "Other Services (except Public Administration)",
	"99":              "Industries not classified",
}

// SectorTitle returns the title of a sector code, or the code itself.
func SectorTitle(code string) string {
	if title, ok := SectorTitles[code]; ok {
		return title
	}
	return code
}

// UnknownLabelFunc is told about category values missing from a label map.
type UnknownLabelFunc func(ctx context.Context, dim Dimension, value string)

// Labeler relabels category values for display. Unknown values pass through
// unchanged and are reported to the UnknownLabelFunc.
type Labeler struct {
	onUnknown UnknownLabelFunc
}

// NewLabeler creates a labeler. A nil callback logs a warning through slog.
func NewLabeler(onUnknown UnknownLabelFunc) *Labeler {
	if onUnknown == nil {
		onUnknown = LogUnknownLabel(slog.Default())
	}
	return &Labeler{onUnknown: onUnknown}
}

// LogUnknownLabel returns a callback that logs unknown labels at warn level.
func LogUnknownLabel(logger *slog.Logger) UnknownLabelFunc {
	return func(ctx context.Context, dim Dimension, value string) {
		logger.WarnContext(ctx, "unmapped category label",
			slog.String("dimension", string(dim)),
			slog.String("value", value))
	}
}

// OrgForm returns the short label of a legal form.
func (l *Labeler) OrgForm(ctx context.Context, raw string) string {
	return l.lookup(ctx, DimensionOrgForm, OrgFormLabels, raw)
}

// Size returns the short label of a size bucket.
func (l *Labeler) Size(ctx context.Context, raw string) string {
	return l.lookup(ctx, DimensionSizeBucket, SizeLabels, raw)
}

func (l *Labeler) lookup(ctx context.Context, dim Dimension, labels map[string]string, raw string) string {
	if short, ok := labels[raw]; ok {
		return short
	}
	l.onUnknown(ctx, dim, raw)
	return raw
}
