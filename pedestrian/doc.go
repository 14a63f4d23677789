// Package pedestrian holds the mobile agents and their continuous-time movement gate.
//
// Each agent owns a clock: a hop of length d is only applied once d/speed has
// elapsed since the agent's last applied move. Agents reference their cell by
// grid.Index and are mutated in place.
package pedestrian
