package riot

import "context"

// Passthrough resolves handles without calling the Riot API. It is used
// when no game API key is configured: the handle is still parsed, and every
// user gets the default profile icon.
type Passthrough struct {
	DDragonVersion string
}

// Resolve parses the handle and returns an identity with no puuid.
func (p Passthrough) Resolve(_ context.Context, raw string) (Identity, error) {
	h, err := ParseHandle(raw)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Handle:  h,
		IconID:  DefaultProfileIconID,
		IconURL: IconURL(p.DDragonVersion, DefaultProfileIconID),
	}, nil
}
