package auth

// CanModify is the single ownership policy: a mutation on an owned resource
// is allowed only when the authenticated subject is the recorded owner.
// Every mutating handler applies this as a second check after
// authentication; it is never implicit.
func CanModify(p *Principal, ownerID string) bool {
	if p == nil || ownerID == "" {
		return false
	}
	return p.SubjectID == ownerID
}
