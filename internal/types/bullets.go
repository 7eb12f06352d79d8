package types

// RewriteCandidate is a proposed rewrite of one bullet, before verification
type RewriteCandidate struct {
	Original    string `json:"original"`
	Proposed    string `json:"proposed"`
	Explanation string `json:"explanation,omitempty"`
	Confidence  int    `json:"confidence"`
}

// StyleChecks represents advisory style results for a bullet
type StyleChecks struct {
	StrongVerb bool `json:"strongVerb"`
	Quantified bool `json:"quantified"`
	NoTaboo    bool `json:"noTaboo"`
	WordCount  bool `json:"wordCount"`
}

// VerifiedBullet is the final outcome of rewriting one bullet.
// Text is either the accepted proposal or the original bullet.
type VerifiedBullet struct {
	ID              string      `json:"id"`
	ExperienceIndex int         `json:"experienceIndex"`
	BulletIndex     int         `json:"bulletIndex"`
	Original        string      `json:"original"`
	Text            string      `json:"text"`
	Accepted        bool        `json:"accepted"`
	State           string      `json:"state"`
	Confidence      int         `json:"confidence"`
	Attempts        int         `json:"attempts"`
	Invented        []string    `json:"invented,omitempty"`
	StyleChecks     StyleChecks `json:"styleChecks"`
}

// Edit returns the bullet as a positional edit when it was accepted and changed.
func (b VerifiedBullet) Edit() (BulletEdit, bool) {
	if !b.Accepted || b.Text == b.Original {
		return BulletEdit{}, false
	}
	return BulletEdit{ExperienceIndex: b.ExperienceIndex, BulletIndex: b.BulletIndex, Text: b.Text}, true
}
