package app

// Gate answers role questions about an authenticated actor.
// Administrators are always requesters.
type Gate interface {
	IsAdministrator(actorID string) bool
	IsRequester(actorID string) bool
}

// StaticGate reads its answers from configured id lists.
// An empty requester list admits every authenticated actor as a requester.
type StaticGate struct {
	admins     map[string]struct{}
	requesters map[string]struct{}
}

func NewStaticGate(adminIDs, requesterIDs []string) *StaticGate {
	g := &StaticGate{
		admins:     make(map[string]struct{}, len(adminIDs)),
		requesters: make(map[string]struct{}, len(requesterIDs)),
	}
	for _, id := range adminIDs {
		g.admins[id] = struct{}{}
	}
	for _, id := range requesterIDs {
		g.requesters[id] = struct{}{}
	}
	return g
}

func (g *StaticGate) IsAdministrator(actorID string) bool {
	if actorID == "" {
		return false
	}
	_, ok := g.admins[actorID]
	return ok
}

func (g *StaticGate) IsRequester(actorID string) bool {
	if actorID == "" {
		return false
	}
	if g.IsAdministrator(actorID) || len(g.requesters) == 0 {
		return true
	}
	_, ok := g.requesters[actorID]
	return ok
}
