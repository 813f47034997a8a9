// Package describe composes the multilingual product description written
// into every export row.
package describe

import (
	"fmt"
	"slices"
	"strings"

	"pepco/internal"
)

// Languages is the segment order after the leading EN segment.
var Languages = []string{
	"AL", "BG", "BiH", "CZ", "DE", "EE", "ES",
	"GR", "HR", "HU", "IT", "LT", "LV", "MK",
	"PL", "PT", "RO", "RS", "SI", "SK",
}

// MaterialLanguages are the only languages the material table translates.
var MaterialLanguages = []string{"AL", "MK"}

var countrySuffixes = map[string]string{
	"BiH": " Sastav materijala na ušivenoj etiketi.",
	"RS":  " Sastav materijala nalazi se na ušivenoj etiketi.",
}

// FallbackMaterials is used when the material table cannot be loaded.
func FallbackMaterials() []internal.MaterialRow {
	return []internal.MaterialRow{
		{Material: "Cotton", Language: "AL", Translation: "Cotton"},
		{Material: "Cotton", Language: "MK", Translation: "Cotton"},
	}
}

// MaterialText holds, per material language, the translated material names
// and the "pct% name" composition built from the operator selections.
type MaterialText struct {
	Names        map[string]string
	Compositions map[string]string
}

func (m MaterialText) Empty() bool {
	return len(m.Names) == 0 && len(m.Compositions) == 0
}

// BuildMaterialText translates the selected materials. Materials without a
// translation row for a language are skipped for that language.
func BuildMaterialText(selected []internal.MaterialSelection, rows []internal.MaterialRow) MaterialText {
	out := MaterialText{Names: map[string]string{}, Compositions: map[string]string{}}
	if len(selected) == 0 || len(rows) == 0 {
		return out
	}
	for _, lang := range MaterialLanguages {
		var names, comp []string
		for _, sel := range selected {
			tr, ok := lookupMaterial(rows, sel.Material, lang)
			if !ok {
				continue
			}
			names = append(names, tr)
			comp = append(comp, fmt.Sprintf("%d%% %s", sel.Percent, tr))
		}
		if len(names) > 0 {
			out.Names[lang] = strings.Join(names, ", ")
			out.Compositions[lang] = strings.Join(comp, ", ")
		}
	}
	return out
}

func lookupMaterial(rows []internal.MaterialRow, material, lang string) (string, bool) {
	for _, r := range rows {
		if r.Language != lang || !strings.EqualFold(strings.TrimSpace(r.Material), strings.TrimSpace(material)) {
			continue
		}
		tr := strings.TrimSpace(r.Translation)
		if tr == "" {
			return "", false
		}
		return tr, true
	}
	return "", false
}

// Materials lists the distinct material names of the table, Cotton first.
func Materials(rows []internal.MaterialRow) []string {
	out := []string{"Cotton"}
	seen := map[string]bool{"cotton": true}
	for _, r := range rows {
		key := strings.ToLower(strings.TrimSpace(r.Material))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(r.Material))
	}
	return out
}

// Result is the composed description plus the languages that had no
// translation and fell back to the product name.
type Result struct {
	Text      string
	Fallbacks []string
}

// Compose builds "|EN| text |AL| text ..." for one translation row.
func Compose(productName string, row internal.TranslationRow, materials MaterialText) Result {
	var res Result
	segments := make([]string, 0, len(Languages)+1)

	en, ok := row.Value("EN")
	if !ok {
		en = productName
		res.Fallbacks = append(res.Fallbacks, "EN")
	}
	segments = append(segments, "|EN| "+en)

	for _, lang := range Languages {
		text, ok := resolve(row, lang)
		if !ok {
			text = productName
			res.Fallbacks = append(res.Fallbacks, lang)
		}
		if !materials.Empty() && slices.Contains(MaterialLanguages, lang) {
			text = appendMaterials(text, lang, materials)
		}
		if suffix, ok := countrySuffixes[lang]; ok {
			if !strings.HasSuffix(text, ".") {
				text += "."
			}
			text += suffix
		}
		segments = append(segments, "|"+lang+"| "+text)
	}
	res.Text = strings.Join(segments, " ")
	return res
}

func resolve(row internal.TranslationRow, lang string) (string, bool) {
	if lang == "ES" {
		es, okES := row.Value("ES")
		ca, okCA := row.Value("ES_CA")
		if okES && okCA {
			return es + " / " + ca, true
		}
	}
	return row.Value(lang)
}

func appendMaterials(text, lang string, materials MaterialText) string {
	addition := materials.Compositions[lang]
	if addition == "" {
		addition = materials.Names[lang]
	}
	if addition == "" || strings.Contains(text, addition) {
		return text
	}
	return text + ": " + addition
}
