/*
Package altvote counts ranked ballots with the alternative vote, also known
as instant-runoff voting.
*/
package altvote

import "math/rand"

// PackageVersion of the current altvote implementation
const PackageVersion = "0.2"

// New creates an election from the configuration found on disk and in the
// environment, updated with the non-zero values of options. Ties are broken
// with a random source seeded from the configured seed. If a ballot file is
// configured it is loaded; when some of its lines are rejected the election
// is returned along with the error so the caller can decide whether to count.
func New(options *Config) (election *Election, err error) {
	var config *Config
	if config, err = LoadConfig(options); err != nil {
		return nil, err
	}

	election = NewElection(rand.New(rand.NewSource(config.GetSeed())), config.GetCandidates()...)
	if config.Ballots != "" {
		if _, err = election.LoadVotes(config.Ballots); err != nil {
			return election, err
		}
	}
	return election, nil
}
