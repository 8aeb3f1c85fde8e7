package engine

import (
	"math"
	"sort"

	"github.com/tacticast/viewpoint/internal/model"
)

// BuildFrameGraphs builds one graph per canonical frame.
//
// Nodes: one per player (the frame-0 player set is enforced upstream).
// Edges, comparing every ordered pair of distinct players:
//   - TEAM_NEAR: same team, distance <= cfg.TeammateRadius
//   - OPP_NEAR: different team, distance <= cfg.OpponentRadius
//   - BALL_LINK: one self-edge per player carrying ball distance and ball
//     coordinates; always emitted, it is a feature carrier, not a filter.
func BuildFrameGraphs(
	frames []model.Frame,
	tRel []float64,
	velByFrame map[int]map[string]model.Vec2,
	playerTeam map[string]model.TeamID,
	playerRole map[string]string,
	cfg Config,
) []model.FrameGraph {
	graphs := make([]model.FrameGraph, 0, len(frames))

	for _, fr := range frames {
		i := fr.FrameIdx

		nodes := make(map[string]model.GraphNode, len(fr.Players))
		for pid, pos := range fr.Players {
			nodes[pid] = model.GraphNode{
				PlayerID: pid,
				Team:     teamOf(playerTeam, pid),
				Role:     playerRole[pid],
				Pos:      pos,
				Vel:      velByFrame[i][pid],
			}
		}

		pids := sortedPlayerIDs(fr.Players)

		var edges []model.GraphEdge
		for _, pa := range pids {
			posA := fr.Players[pa]
			teamA := teamOf(playerTeam, pa)

			for _, pb := range pids {
				if pa == pb {
					continue
				}
				posB := fr.Players[pb]
				d := dist(posA, posB)

				if teamOf(playerTeam, pb) == teamA {
					if d <= cfg.TeammateRadius {
						edges = append(edges, model.GraphEdge{
							Src: pa, Dst: pb, Type: model.EdgeTeamNear,
							Features: map[string]float64{"d": d},
						})
					}
				} else if d <= cfg.OpponentRadius {
					edges = append(edges, model.GraphEdge{
						Src: pa, Dst: pb, Type: model.EdgeOppNear,
						Features: map[string]float64{"d": d},
					})
				}
			}
		}

		for _, pid := range pids {
			d := dist(fr.Players[pid], fr.BallPos)
			edges = append(edges, model.GraphEdge{
				Src: pid, Dst: pid, Type: model.EdgeBallLink,
				Features: map[string]float64{
					"ball_d": d,
					"ball_x": fr.BallPos.X,
					"ball_y": fr.BallPos.Y,
				},
			})
		}

		graphs = append(graphs, model.FrameGraph{
			FrameIdx: i,
			Nodes:    nodes,
			Edges:    edges,
			BallPos:  fr.BallPos,
			TRel:     tRel[i],
		})
	}

	return graphs
}

// Summarize derives the per-player features used by candidate generation and
// scoring: opponent pressure count and nearest distance, teammate support
// count and nearest distance, and ball distance. Counts start at zero,
// minimum distances at +Inf; ball_d is pre-seeded by direct computation and
// does not depend on edge presence.
func Summarize(graph model.FrameGraph) map[string]model.PlayerSummary {
	out := make(map[string]model.PlayerSummary, len(graph.Nodes))

	for pid, node := range graph.Nodes {
		out[pid] = model.PlayerSummary{
			MinOppD:  math.Inf(1),
			MinTeamD: math.Inf(1),
			BallD:    dist(node.Pos, graph.BallPos),
		}
	}

	for _, e := range graph.Edges {
		s := out[e.Src]
		switch e.Type {
		case model.EdgeOppNear:
			d := e.Features["d"]
			s.PressureN++
			if d < s.MinOppD {
				s.MinOppD = d
			}
		case model.EdgeTeamNear:
			d := e.Features["d"]
			s.SupportN++
			if d < s.MinTeamD {
				s.MinTeamD = d
			}
		case model.EdgeBallLink:
			s.BallD = e.Features["ball_d"]
		}
		out[e.Src] = s
	}

	return out
}

// teamOf returns the player's team, defaulting to team A for players absent
// from the metadata.
func teamOf(playerTeam map[string]model.TeamID, pid string) model.TeamID {
	if t, ok := playerTeam[pid]; ok {
		return t
	}
	return model.TeamA
}

// sortedPlayerIDs returns map keys in sorted order so edge lists (and the
// tie-breaks that read them) are deterministic.
func sortedPlayerIDs(players map[string]model.Vec2) []string {
	out := make([]string, 0, len(players))
	for pid := range players {
		out = append(out, pid)
	}
	sort.Strings(out)
	return out
}
