package hysteresis

import "fmt"

// NormalizePlanes turns a user plane list into one flag per plane. An empty
// list selects every plane; otherwise only the listed planes are processed.
func NormalizePlanes(planes []int, numPlanes int) ([]bool, error) {
	process := make([]bool, numPlanes)
	if len(planes) == 0 {
		for i := range process {
			process[i] = true
		}
		return process, nil
	}

	for _, p := range planes {
		if p < 0 || p >= numPlanes {
			return nil, fmt.Errorf("%w: plane index %d is out of range [0, %d)", ErrInvalidArgument, p, numPlanes)
		}
		if process[p] {
			return nil, fmt.Errorf("%w: plane %d is specified more than once", ErrInvalidArgument, p)
		}
		process[p] = true
	}
	return process, nil
}
