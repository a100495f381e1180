// Package mock provides test doubles that do not depend on the domain
// packages, currently a controllable clock.
//
//	clk := mock.NewMockClock(time.Time{})
//	clk.AfterFunc(time.Minute, func() { fired = true })
//	clk.Advance(time.Minute) // fired is now true
package mock
