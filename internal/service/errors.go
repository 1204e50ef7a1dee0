package service

import "errors"

// 服务层哨兵错误
var (
	ErrNotFound           = errors.New("record not found")
	ErrShipmentNotFound   = errors.New("shipment not found")
	ErrCarrierMoveEmpty   = errors.New("carrier move has no stops")
	ErrNoPrintableTasks   = errors.New("nothing to print")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrQueueDisabled      = errors.New("queue disabled")
	ErrUnknownJobMode     = errors.New("unknown job mode")
)
