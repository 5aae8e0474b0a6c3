package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for generating memorable family codes
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "cool", "swift", "clever", "jolly",
	"mighty", "super", "star", "wild", "funny", "lucky", "magic", "bouncy",
	"cheerful", "daring", "eager", "flying", "gentle", "kindly", "lively", "merry",
	"noble", "perky", "quick", "royal", "snappy", "turbo", "zippy", "awesome",
	"bold", "cosmic", "epic", "fantastic", "groovy", "calm", "cozy", "steady",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "otter", "phoenix", "unicorn", "rocket", "wizard", "knight",
	"explorer", "ranger", "captain", "comet", "thunder", "river", "meadow", "maple",
	"willow", "acorn", "pebble", "breeze", "ember", "aurora", "harbor", "summit",
	"garden", "lantern", "compass", "anchor", "beacon", "meteor", "canyon", "forest",
}

// GenerateFamilyCode generates a pairing code in the format
// "adjective-noun-NN". A child enters this code once on a new device to pair
// it with their profile, so it has to be easy to read aloud and type.
func GenerateFamilyCode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	num, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%02d", adjective, noun, num.Int64()), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
