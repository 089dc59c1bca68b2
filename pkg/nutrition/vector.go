package nutrition

import "sort"

// Key identifies one nutrient in the canonical per-100g vector. The fixed
// keys below are the diary service's schema names; sources may add further
// keys, which end up in the entry's custom-nutrients bag.
type Key string

const (
	KeyCalories           Key = "calories"
	KeyProtein            Key = "protein"
	KeyCarbs              Key = "carbs"
	KeyFat                Key = "fat"
	KeySaturatedFat       Key = "saturated_fat"
	KeyPolyunsaturatedFat Key = "polyunsaturated_fat"
	KeyMonounsaturatedFat Key = "monounsaturated_fat"
	KeyTransFat           Key = "trans_fat"
	KeyCholesterol        Key = "cholesterol"
	KeySodium             Key = "sodium"
	KeyPotassium          Key = "potassium"
	KeyDietaryFiber       Key = "dietary_fiber"
	KeySugars             Key = "sugars"
	KeyVitaminA           Key = "vitamin_a"
	KeyVitaminC           Key = "vitamin_c"
	KeyCalcium            Key = "calcium"
	KeyIron               Key = "iron"

	// KeyNetCarbs is derived, never supplied by a source.
	KeyNetCarbs Key = "net_carbs"
)

type Unit string

const (
	UnitKcal      Unit = "kcal"
	UnitGram      Unit = "g"
	UnitMilligram Unit = "mg"
)

// Provenance records which kind of source supplied a value.
type Provenance string

const (
	ProvenanceDeclared  Provenance = "declared"
	ProvenanceEstimated Provenance = "estimated"
	ProvenanceExternal  Provenance = "external_lookup"
	ProvenanceDerived   Provenance = "derived"
)

// canonicalUnits is the single unit system every adapter converts into
// before a value enters a vector: kilocalories for energy, grams for
// macros, milligrams for minerals and vitamins.
var canonicalUnits = map[Key]Unit{
	KeyCalories:           UnitKcal,
	KeyProtein:            UnitGram,
	KeyCarbs:              UnitGram,
	KeyFat:                UnitGram,
	KeySaturatedFat:       UnitGram,
	KeyPolyunsaturatedFat: UnitGram,
	KeyMonounsaturatedFat: UnitGram,
	KeyTransFat:           UnitGram,
	KeyDietaryFiber:       UnitGram,
	KeySugars:             UnitGram,
	KeyNetCarbs:           UnitGram,
	KeyCholesterol:        UnitMilligram,
	KeySodium:             UnitMilligram,
	KeyPotassium:          UnitMilligram,
	KeyVitaminA:           UnitMilligram,
	KeyVitaminC:           UnitMilligram,
	KeyCalcium:            UnitMilligram,
	KeyIron:               UnitMilligram,
}

// CanonicalUnit returns the storage unit for a key. Unknown micronutrient
// keys default to milligrams.
func CanonicalUnit(k Key) Unit {
	if u, ok := canonicalUnits[k]; ok {
		return u
	}
	return UnitMilligram
}

type Amount struct {
	Value      float64
	Unit       Unit
	Provenance Provenance
}

// Vector is the canonical per-100g nutrient mapping. A key that was never
// set is unknown, which is distinct from a key set to zero.
type Vector struct {
	values map[Key]Amount
	final  bool
}

func NewVector() *Vector {
	return &Vector{values: make(map[Key]Amount)}
}

// Set stores a value in the key's canonical unit. Negative values are not
// representable and are dropped, which leaves the key unknown.
func (v *Vector) Set(k Key, value float64, p Provenance) {
	if v.final || value < 0 {
		return
	}
	v.values[k] = Amount{Value: value, Unit: CanonicalUnit(k), Provenance: p}
}

func (v *Vector) Get(k Key) (Amount, bool) {
	a, ok := v.values[k]
	return a, ok
}

// Value returns the stored value, or zero when the key is unknown. Callers
// that need to tell unknown from zero use Get or Has.
func (v *Vector) Value(k Key) float64 {
	return v.values[k].Value
}

func (v *Vector) Has(k Key) bool {
	_, ok := v.values[k]
	return ok
}

func (v *Vector) Len() int { return len(v.values) }

func (v *Vector) Keys() []Key {
	keys := make([]Key, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// HasPositiveMacro is the sufficiency test: at least one of calories,
// protein, fat, carbohydrate strictly above zero.
func (v *Vector) HasPositiveMacro() bool {
	for _, k := range []Key{KeyCalories, KeyProtein, KeyFat, KeyCarbs} {
		if v.values[k].Value > 0 {
			return true
		}
	}
	return false
}

// Finalize derives net carbohydrate (carbs minus fiber, floored at zero)
// and seals the vector. Derivation happens exactly once, on the winning
// vector only; calling Finalize again is a no-op.
func (v *Vector) Finalize() {
	if v.final {
		return
	}
	if carbs, ok := v.values[KeyCarbs]; ok {
		net := carbs.Value - v.values[KeyDietaryFiber].Value
		if net < 0 {
			net = 0
		}
		v.values[KeyNetCarbs] = Amount{Value: net, Unit: UnitGram, Provenance: ProvenanceDerived}
	}
	v.final = true
}

func (v *Vector) Finalized() bool { return v.final }
