package domain

// ProfileFields is the fixed attribute set a profile page may yield.
// Every field is optional; a zero value means "not captured", which is a
// valid state rather than an error.
//
// Name and Slots are overrides, not captured attributes: some sites show
// the proper name or the weekly schedule only on the profile page. When
// set they take precedence over the schedule entry. Neither participates
// in Captured/Missing diagnostics.
type ProfileFields struct {
	Age          int      `json:"age,omitempty"`
	Nationality  string   `json:"nationality,omitempty"`
	Ethnicity    string   `json:"ethnicity,omitempty"`
	Height       string   `json:"height,omitempty"`
	Weight       string   `json:"weight,omitempty"`
	Bust         string   `json:"bust,omitempty"`
	BustType     string   `json:"bust_type,omitempty"`
	Measurements string   `json:"measurements,omitempty"`
	HairColor    string   `json:"hair_color,omitempty"`
	EyeColor     string   `json:"eye_color,omitempty"`
	ServiceType  string   `json:"service_type,omitempty"`
	Tier         string   `json:"tier,omitempty"`
	Images       []string `json:"images,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	Name  string    `json:"name,omitempty"`
	Slots []RawSlot `json:"slots,omitempty"`
}

// profileFieldNames fixes the diagnostic ordering of the field set.
var profileFieldNames = []string{
	"age", "nationality", "ethnicity", "height", "weight",
	"bust", "bust_type", "measurements", "hair_color", "eye_color",
	"service_type", "tier", "images", "tags",
}

func (p *ProfileFields) presence() map[string]bool {
	return map[string]bool{
		"age":          p.Age > 0,
		"nationality":  p.Nationality != "",
		"ethnicity":    p.Ethnicity != "",
		"height":       p.Height != "",
		"weight":       p.Weight != "",
		"bust":         p.Bust != "",
		"bust_type":    p.BustType != "",
		"measurements": p.Measurements != "",
		"hair_color":   p.HairColor != "",
		"eye_color":    p.EyeColor != "",
		"service_type": p.ServiceType != "",
		"tier":         p.Tier != "",
		"images":       len(p.Images) > 0,
		"tags":         len(p.Tags) > 0,
	}
}

// Captured returns the names of fields present on this profile.
func (p *ProfileFields) Captured() []string {
	return p.filterPresence(true)
}

// Missing returns the names of fields absent from this profile.
func (p *ProfileFields) Missing() []string {
	return p.filterPresence(false)
}

func (p *ProfileFields) filterPresence(want bool) []string {
	presence := p.presence()
	out := make([]string, 0, len(profileFieldNames))
	for _, name := range profileFieldNames {
		if presence[name] == want {
			out = append(out, name)
		}
	}
	return out
}
