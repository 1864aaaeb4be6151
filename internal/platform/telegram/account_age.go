package telegram

import (
	"math"
	"sort"
	"time"
)

// Telegram assigns user ids monotonically, so the registration date of an
// account can be estimated by interpolating between known id/date anchors.
// Values are unix milliseconds.
var creationAnchors = map[int64]int64{
	2768409:    1383264000000,
	7679610:    1388448000000,
	11538514:   1391212000000,
	15835244:   1392940000000,
	23646077:   1393459000000,
	38015510:   1393632000000,
	44634663:   1399334000000,
	46145305:   1400198000000,
	54845238:   1411257000000,
	63263518:   1414454000000,
	101260938:  1425600000000,
	101323197:  1426204000000,
	111220210:  1429574000000,
	103258382:  1432771000000,
	103151531:  1433376000000,
	116812045:  1437696000000,
	122600695:  1437782000000,
	109393468:  1439078000000,
	112594714:  1439683000000,
	124872445:  1439856000000,
	130029930:  1441324000000,
	125828524:  1444003000000,
	133909606:  1444176000000,
	157242073:  1446768000000,
	143445125:  1448928000000,
	148670295:  1452211000000,
	152079341:  1453420000000,
	171295414:  1457481000000,
	181783990:  1460246000000,
	222021233:  1465344000000,
	225034354:  1466208000000,
	278941742:  1473465000000,
	285253072:  1476835000000,
	294851037:  1479600000000,
	297621225:  1481846000000,
	328594461:  1482969000000,
	337808429:  1487707000000,
	341546272:  1487782000000,
	352940995:  1487894000000,
	369669043:  1490918000000,
	400169472:  1501459000000,
	805158066:  1563208000000,
	1974255900: 1634000000000,
}

var anchorIDs []int64

func init() {
	anchorIDs = make([]int64, 0, len(creationAnchors))
	for id := range creationAnchors {
		anchorIDs = append(anchorIDs, id)
	}
	sort.Slice(anchorIDs, func(i, j int) bool { return anchorIDs[i] < anchorIDs[j] })
}

// EstimateCreatedAt estimates when the account with the given user id was
// registered. Ids outside the anchor range clamp to the nearest anchor.
func EstimateCreatedAt(userID int64) time.Time {
	if userID <= 0 {
		return time.Time{}
	}

	first, last := anchorIDs[0], anchorIDs[len(anchorIDs)-1]
	if userID <= first {
		return time.Unix(creationAnchors[first]/1000, 0)
	}
	if userID >= last {
		return time.Unix(creationAnchors[last]/1000, 0)
	}

	lower := first
	for _, id := range anchorIDs {
		if userID > id {
			lower = id
			continue
		}
		lowerDate := float64(creationAnchors[lower]) / 1000
		upperDate := float64(creationAnchors[id]) / 1000
		ratio := float64(userID-lower) / float64(id-lower)
		estimated := math.Floor(ratio*(upperDate-lowerDate) + lowerDate)
		return time.Unix(int64(estimated), 0)
	}

	return time.Time{}
}
