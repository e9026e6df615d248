package salary

var ErrUpsertRowVanished = errUpsertRowVanished
