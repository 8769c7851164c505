package dto

// OutreachDraftRequest describes the lead an outreach draft is prepared for.
type OutreachDraftRequest struct {
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	Company    string `json:"company,omitempty"`
	Domain     string `json:"domain,omitempty"`
	Role       string `json:"role,omitempty"`
	Region     string `json:"region,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	Pitch      string `json:"pitch,omitempty"`
}
