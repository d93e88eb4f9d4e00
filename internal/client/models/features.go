package models

// AvailableFeature is a feature the server reports as unlocked.
type AvailableFeature struct {
	FeatureID string `json:"featureId"`
}

// LockedFeature is a feature the server reports as locked, with the level
// the user has to reach to unlock it.
type LockedFeature struct {
	FeatureID            string `json:"featureId"`
	RequiredLevel        int    `json:"requiredLevel"`
	RequiredLevelDisplay string `json:"requiredLevelDisplay"`
}

// FeatureGateSnapshot is the server's authoritative feature list.
// A newer snapshot always replaces the previous one.
type FeatureGateSnapshot struct {
	AvailableFeatures []AvailableFeature `json:"availableFeatures"`
	LockedFeatures    []LockedFeature    `json:"lockedFeatures"`
	CurrentLevel      string             `json:"currentLevel"`
	CRSScore          *int               `json:"crsScore"`
	NextLevel         string             `json:"nextLevel"`
	PointsToNextLevel int                `json:"pointsToNextLevel"`
}

// Available reports whether featureID is listed in AvailableFeatures.
func (s *FeatureGateSnapshot) Available(featureID string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.AvailableFeatures {
		if f.FeatureID == featureID {
			return true
		}
	}
	return false
}

// Locked returns the locked entry for featureID, if any.
func (s *FeatureGateSnapshot) Locked(featureID string) (LockedFeature, bool) {
	if s == nil {
		return LockedFeature{}, false
	}
	for _, f := range s.LockedFeatures {
		if f.FeatureID == featureID {
			return f, true
		}
	}
	return LockedFeature{}, false
}

// CRSScore is the career readiness score summary.
type CRSScore struct {
	TotalScore        int    `json:"totalScore"`
	Level             string `json:"level"`
	NextLevel         string `json:"nextLevel"`
	PointsToNextLevel int    `json:"pointsToNextLevel"`
}
