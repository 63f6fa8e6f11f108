package model

import "time"

// Language proficiency levels accepted on a profile.
const (
	LanguageBeginner     = "Beginner"
	LanguageIntermediate = "Intermediate"
	LanguageAdvance      = "Advance"
	LanguageNative       = "Native"
)

// ValidLanguageLevel reports whether level is one of the accepted
// proficiency values.
func ValidLanguageLevel(level string) bool {
	switch level {
	case LanguageBeginner, LanguageIntermediate, LanguageAdvance, LanguageNative:
		return true
	}
	return false
}

// Experience is one entry of a profile's work history.
type Experience struct {
	Position    string     `json:"position,omitempty"`
	Company     string     `json:"company,omitempty"`
	StartYear   *time.Time `json:"startYear,omitempty"`
	EndYear     *time.Time `json:"endYear,omitempty"` // nil while the role is current
	Description string     `json:"description,omitempty"`
}

// Education is one entry of a profile's education history.
type Education struct {
	Institution string     `json:"institution,omitempty"`
	Major       string     `json:"major,omitempty"`
	Level       string     `json:"level,omitempty"`
	GradYear    *time.Time `json:"gradYear,omitempty"`
}

// Certification is a certificate or award listed on a profile.
type Certification struct {
	Name      string     `json:"name,omitempty"`
	Organizer string     `json:"organizer,omitempty"`
	Year      *time.Time `json:"year,omitempty"`
}

// Skills groups a profile's skills by kind.
type Skills struct {
	HardSkill []string `json:"hardSkill,omitempty"`
	SoftSkill []string `json:"softSkill,omitempty"`
}

// PortfolioItem is a link to a project the user wants to show off.
type PortfolioItem struct {
	ProjectName string `json:"projectName,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Language is a spoken language plus proficiency level.
type Language struct {
	Language string `json:"language,omitempty"`
	Level    string `json:"level,omitempty"`
}

// Profile is a user's CV-style profile. Exactly one profile exists per
// user. The structured sections (experience, education, ...) are stored
// as JSON columns; they are read and written as whole documents, never
// queried field by field.
type Profile struct {
	ID           string `json:"id"     db:"id"`
	UserID       string `json:"userId" db:"user_id"` // unique: one profile per user
	FullName     string `json:"fullName"     db:"full_name"`
	BornPlace    string `json:"bornPlace"    db:"born_place"`
	BornDate     time.Time `json:"bornDate"  db:"born_date"`
	ShortProfile string `json:"shortProfile,omitempty" db:"short_profile"`
	PhoneNumber  string `json:"phoneNumber"  db:"phone_number"`

	WorkingExperience []Experience    `json:"workingExperience,omitempty"`
	Education         []Education     `json:"education,omitempty"`
	Certification     []Certification `json:"certification,omitempty"`
	Skills            Skills          `json:"skills"`
	Portfolio         []PortfolioItem `json:"portfolio,omitempty"`
	Languages         []Language      `json:"languages,omitempty"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
