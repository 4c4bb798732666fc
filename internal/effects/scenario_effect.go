package effects

// ScenarioEffect uses per-scene motion overrides from a storyboard
// and falls back to the default cycle for the rest.
type ScenarioEffect struct {
	Overrides map[int]Profile
}

// NewScenarioEffect builds an effect from storyboard motion names, one per scene.
// Empty names keep the cycled profile.
func NewScenarioEffect(motions []string) (*ScenarioEffect, error) {
	e := &ScenarioEffect{Overrides: map[int]Profile{}}
	for i, name := range motions {
		if name == "" {
			continue
		}
		p, err := ParseProfile(name)
		if err != nil {
			return nil, err
		}
		e.Overrides[i] = p
	}
	return e, nil
}

func (e *ScenarioEffect) Profile(sceneIndex int) Profile {
	if p, ok := e.Overrides[sceneIndex]; ok {
		return p
	}
	return ForScene(sceneIndex)
}
