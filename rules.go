package crmkv

import "fmt"

// Rule selects the records to act on from an ordered sequence.
type Rule func(records Records) Records

func SelectAll(records Records) Records {
	return records
}

func SelectFirst(records Records) Records {
	if len(records) == 0 {
		return nil
	}
	return records[:1]
}

func SelectAllButFirst(records Records) Records {
	if len(records) <= 1 {
		return nil
	}
	return records[1:]
}

// SelectNewest returns the first record of a sequence ordered newest first.
// ok is false if there are no records. If any record was created after the
// one before it, ErrPreconditionViolation is returned.
func SelectNewest(records Records) (r Record, ok bool, err error) {
	for i := 1; i < len(records); i++ {
		if records[i].Created.After(records[i-1].Created) {
			return r, false, fmt.Errorf("%w: records are not ordered newest first: index %d was created after index %d", ErrPreconditionViolation, i, i-1)
		}
	}
	if len(records) == 0 {
		return r, false, nil
	}
	return records[0], true, nil
}
