package jwttoken

import (
	authmw "vouch/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) (*authmw.JWTClaims, error) {
	caller, err := claims.Caller()
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{
		Caller: caller,
		JTI:    claims.ID,
	}, nil
}

// JWTServiceAdapter exposes JWTService as the auth middleware's validator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims)
}
