package reminder

import (
	"fmt"
	"math/rand"
	"time"

	"pepeeats/internal/domain"
)

// RemarkBucket určuje kategorii poznámky k jídlu podle historie uživatele.
type RemarkBucket int

const (
	// BucketNone znamená žádnou poznámku.
	BucketNone RemarkBucket = iota
	// BucketRepeatMany: uživatel si jídlo objednal alespoň třikrát.
	BucketRepeatMany
	// BucketRatingHigh: poslední hodnocení jídla >= 80.
	BucketRatingHigh
	// BucketRatingMedium: poslední hodnocení 50–79.
	BucketRatingMedium
	// BucketRatingLow: poslední hodnocení < 50.
	BucketRatingLow
	// BucketRepeatSome: uživatel si jídlo objednal alespoň dvakrát.
	BucketRepeatSome
)

// RemarkFunc vybírá text poznámky pro kategorii. V produkci náhodný výběr
// z malého fondu, v testech deterministický stub.
type RemarkFunc func(bucket RemarkBucket, orderCount int) string

// BucketForDish zařazuje jídlo do kategorie podle historie objednávek
// příjemce. Názvy se porovnávají normalizovaně (trim + malá písmena).
// Priorita: opakování >= 3, pak poslední hodnocení, pak opakování >= 2.
func BucketForDish(history []domain.Order, dish string) (RemarkBucket, int) {
	normalized := domain.NormalizeDish(dish)

	count := 0
	var lastRating *int
	var lastRatedAt time.Time
	for _, order := range history {
		if domain.NormalizeDish(order.MealDescription) != normalized {
			continue
		}
		count++
		if order.Rating != nil && !order.OrderForDate.Before(lastRatedAt) {
			lastRating = order.Rating
			lastRatedAt = order.OrderForDate
		}
	}

	switch {
	case count >= 3:
		return BucketRepeatMany, count
	case lastRating != nil && *lastRating >= 80:
		return BucketRatingHigh, count
	case lastRating != nil && *lastRating >= 50:
		return BucketRatingMedium, count
	case lastRating != nil:
		return BucketRatingLow, count
	case count >= 2:
		return BucketRepeatSome, count
	default:
		return BucketNone, count
	}
}

var remarkPools = map[RemarkBucket][]string{
	BucketRatingHigh: {
		"minule sis to pochvaloval/a 👌",
		"tohle u tebe vede 🏆",
	},
	BucketRatingMedium: {
		"minule to bylo ujde 🤷",
		"průměr, ale jistota",
	},
	BucketRatingLow: {
		"minule tě to zklamalo 👀",
		"pozor, minule propadák",
	},
	BucketRepeatSome: {
		"to už znáš",
		"osvědčená volba",
	},
}

// RandomRemark je produkční výběr poznámky. Kosmetika, nic nosného.
func RandomRemark(bucket RemarkBucket, orderCount int) string {
	if bucket == BucketRepeatMany {
		return fmt.Sprintf("objednáno už %dx 🐸", orderCount)
	}
	pool := remarkPools[bucket]
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}
