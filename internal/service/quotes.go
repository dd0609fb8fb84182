package service

import "math/rand/v2"

var quotes = []string{
	"Keep going! One more task 💪",
	"Focus is a superpower! 🔥",
	"You're doing great! Don't give up 🌟",
	"Small tasks today = big wins tomorrow 📈",
}

// PickQuote returns a motivational quote chosen uniformly at random.
func PickQuote() string {
	return quotes[rand.IntN(len(quotes))]
}
