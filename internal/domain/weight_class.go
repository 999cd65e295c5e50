package domain

import "strings"

// WeightClass is a normalized UFC weight class.
type WeightClass string

const (
	WeightClassStrawweight         WeightClass = "strawweight"
	WeightClassFlyweight           WeightClass = "flyweight"
	WeightClassBantamweight        WeightClass = "bantamweight"
	WeightClassFeatherweight       WeightClass = "featherweight"
	WeightClassLightweight         WeightClass = "lightweight"
	WeightClassWelterweight        WeightClass = "welterweight"
	WeightClassMiddleweight        WeightClass = "middleweight"
	WeightClassLightHeavyweight    WeightClass = "light_heavyweight"
	WeightClassHeavyweight         WeightClass = "heavyweight"
	WeightClassWomensStrawweight   WeightClass = "womens_strawweight"
	WeightClassWomensFlyweight     WeightClass = "womens_flyweight"
	WeightClassWomensBantamweight  WeightClass = "womens_bantamweight"
	WeightClassWomensFeatherweight WeightClass = "womens_featherweight"
	WeightClassCatchWeight         WeightClass = "catch_weight"
	WeightClassOpenWeight          WeightClass = "open_weight"
	WeightClassUnknown             WeightClass = "unknown"
)

// WeightClasses lists the fixed vocabulary, unknown last.
var WeightClasses = []WeightClass{
	WeightClassStrawweight,
	WeightClassFlyweight,
	WeightClassBantamweight,
	WeightClassFeatherweight,
	WeightClassLightweight,
	WeightClassWelterweight,
	WeightClassMiddleweight,
	WeightClassLightHeavyweight,
	WeightClassHeavyweight,
	WeightClassWomensStrawweight,
	WeightClassWomensFlyweight,
	WeightClassWomensBantamweight,
	WeightClassWomensFeatherweight,
	WeightClassCatchWeight,
	WeightClassOpenWeight,
	WeightClassUnknown,
}

// weightClassKeys maps letters-only lowercase keys to the vocabulary.
var weightClassKeys = func() map[string]WeightClass {
	m := make(map[string]WeightClass, len(WeightClasses)+4)
	for _, wc := range WeightClasses {
		m[lettersOnly(string(wc))] = wc
	}
	// Common spellings seen in raw exports
	m["catchweight"] = WeightClassCatchWeight
	m["openweight"] = WeightClassOpenWeight
	m["womanstrawweight"] = WeightClassWomensStrawweight
	m["womanflyweight"] = WeightClassWomensFlyweight
	m["womanbantamweight"] = WeightClassWomensBantamweight
	m["womanfeatherweight"] = WeightClassWomensFeatherweight
	return m
}()

// Decorations stripped from raw weight class labels before lookup.
var (
	weightClassPrefixes = []string{"ufc", "interim"}
	weightClassSuffixes = []string{"bout", "title", "interim", "tournament", "division"}
)

// NormalizeWeightClass maps a raw label onto the vocabulary.
// Returns (WeightClassUnknown, false) for labels it does not recognize.
func NormalizeWeightClass(raw string) (WeightClass, bool) {
	key := lettersOnly(raw)
	if key == "" {
		return WeightClassUnknown, false
	}

	for changed := true; changed; {
		changed = false
		for _, p := range weightClassPrefixes {
			if strings.HasPrefix(key, p) && len(key) > len(p) {
				key = key[len(p):]
				changed = true
			}
		}
		for _, s := range weightClassSuffixes {
			if strings.HasSuffix(key, s) && len(key) > len(s) {
				key = key[:len(key)-len(s)]
				changed = true
			}
		}
	}

	if wc, ok := weightClassKeys[key]; ok {
		return wc, wc != WeightClassUnknown
	}
	return WeightClassUnknown, false
}

// IsRankable reports whether rankings can be matched in this class.
func (w WeightClass) IsRankable() bool {
	return w != WeightClassUnknown && w != ""
}

func lettersOnly(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
